package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Sucesso", nil, ExitOK},
		{"Configuração", Configuration("api_version", "unsupported"), ExitUserError},
		{"Autenticação", Authentication(errors.New("401"), "rejected"), ExitUserError},
		{"Data", DateParse(errors.New("bad"), "date_from", "cannot parse"), ExitUserError},
		{"Resultado vazio", EmptyResult(), ExitUserError},
		{"Falha temporária esgotada", TransientServer(errors.New("500"), "server error"), ExitUserError},
		{"Geração do relatório", ReportGeneration(nil, "failed"), ExitUserError},
		{"Encoding", Encoding(nil, "invalid"), ExitUserError},
		{"Erro classificado embrulhado", fmt.Errorf("contexto: %w", EmptyResult()), ExitUserError},
		{"Erro não classificado", errors.New("boom"), ExitAppError},
		{"Interno explícito", New(KindInternal, "boom"), ExitAppError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := WrapField(errors.New("no PEM data"), KindConfiguration, "#private_key", "cannot parse private key")

	assert.Equal(t, "cannot parse private key (field: #private_key): no PEM data", err.Error())
	assert.Equal(t, err.Error(), UserMessage(fmt.Errorf("wrapped: %w", err)))
	assert.NotEmpty(t, err.StackTrace())
}

func TestUserMessage_Unclassified(t *testing.T) {
	assert.Equal(t, "Unexpected error, please contact support", UserMessage(errors.New("nil pointer")))
	assert.Empty(t, UserMessage(nil))
}

func TestIsTransient(t *testing.T) {
	base := errors.New("ServerError.SERVER_ERROR")

	assert.True(t, IsTransient(TransientServer(base, "server error")))
	assert.True(t, IsTransient(fmt.Errorf("attempt 3: %w", TransientServer(base, "server error"))))
	assert.False(t, IsTransient(ReportGeneration(base, "rejected")))
	assert.False(t, IsTransient(base))
	assert.False(t, IsTransient(nil))
	assert.ErrorIs(t, TransientServer(base, "server error"), base)
}
