package apperrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifica os erros que chegam até a borda do processo
type Kind string

const (
	// Erros de entrada do usuário
	KindConfiguration  Kind = "CONFIGURATION"  // Parâmetros ausentes ou inválidos, versão de API não suportada
	KindAuthentication Kind = "AUTHENTICATION" // Provedor de identidade rejeitou as credenciais
	KindDateParse      Kind = "DATE_PARSE"     // Data explícita ilegível
	KindEmptyResult    Kind = "EMPTY_RESULT"   // Consulta válida, mas sem dados

	// Erros do servidor remoto
	KindTransientServer  Kind = "TRANSIENT_SERVER_FAULT" // Falha temporária do servidor, pode ser repetida
	KindReportGeneration Kind = "REPORT_GENERATION"      // Combinação inválida de dimensões, métricas ou versão

	// Erros de processamento local
	KindEncoding Kind = "ENCODING" // Bytes que não podem ser decodificados como texto

	// Qualquer coisa não classificada
	KindInternal Kind = "INTERNAL"
)

const (
	ExitOK        = 0
	ExitUserError = 1
	ExitAppError  = 2
)

// Mapeamento de tipos de erro para códigos de saída do processo
var exitCodeMap = map[Kind]int{
	KindConfiguration:    ExitUserError,
	KindAuthentication:   ExitUserError,
	KindDateParse:        ExitUserError,
	KindEmptyResult:      ExitUserError,
	KindTransientServer:  ExitUserError,
	KindReportGeneration: ExitUserError,
	KindEncoding:         ExitUserError,
	KindInternal:         ExitAppError,
}

// Error representa um erro classificado do extrator
type Error struct {
	Kind    Kind   // Classe do erro
	Field   string // Campo de configuração envolvido (quando aplicável)
	Message string // Mensagem legível para o usuário
	Err     error  // Erro base (opcional)

	stack error
}

// Error implementa a interface error
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap retorna o erro subjacente
func (e *Error) Unwrap() error {
	return e.Err
}

// StackTrace retorna a pilha capturada na criação do erro
func (e *Error) StackTrace() errors.StackTrace {
	if st, ok := e.stack.(interface{ StackTrace() errors.StackTrace }); ok {
		return st.StackTrace()
	}
	return nil
}

func newError(kind Kind, field, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Message: message,
		Err:     err,
		stack:   errors.New(message),
	}
}

// New cria um erro classificado sem causa
func New(kind Kind, message string) *Error {
	return newError(kind, "", message, nil)
}

// Wrap classifica um erro existente
func Wrap(err error, kind Kind, message string) *Error {
	return newError(kind, "", message, err)
}

// NewFieldError cria um erro classificado associado a um campo da configuração
func NewFieldError(kind Kind, field, message string) *Error {
	return newError(kind, field, message, nil)
}

// WrapField classifica um erro existente associado a um campo da configuração
func WrapField(err error, kind Kind, field, message string) *Error {
	return newError(kind, field, message, err)
}

// Atalhos para os tipos mais usados

func Configuration(field, message string) *Error {
	return NewFieldError(KindConfiguration, field, message)
}

func Authentication(err error, message string) *Error {
	return Wrap(err, KindAuthentication, message)
}

func DateParse(err error, field, message string) *Error {
	return WrapField(err, KindDateParse, field, message)
}

func TransientServer(err error, message string) *Error {
	return Wrap(err, KindTransientServer, message)
}

func ReportGeneration(err error, message string) *Error {
	return Wrap(err, KindReportGeneration, message)
}

func EmptyResult() *Error {
	return New(KindEmptyResult, "No data found")
}

func Encoding(err error, message string) *Error {
	return Wrap(err, KindEncoding, message)
}

// As extrai o primeiro *Error da cadeia
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf retorna o tipo do erro, ou KindInternal quando não classificado
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is verifica se o erro pertence ao tipo informado
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTransient indica se o erro pode ser repetido
func IsTransient(err error) bool {
	return Is(err, KindTransientServer)
}

// ExitCode converte um erro no código de saída do processo
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	code, exists := exitCodeMap[KindOf(err)]
	if !exists {
		return ExitAppError
	}
	return code
}

// UserMessage retorna a mensagem exibida ao usuário, sem detalhes internos
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := As(err)
	if !ok {
		return "Unexpected error, please contact support"
	}
	return appErr.Error()
}
