// Package retry encapsula a política de novas tentativas usada nas chamadas ao Ad Manager
package retry

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go/v4"
)

// Timer permite trocar a espera real por uma simulada nos testes
type Timer = retrygo.Timer

// Policy define quantas vezes e com qual intervalo uma operação é repetida.
// Somente erros aceitos por RetryIf são repetidos; os demais retornam na hora.
type Policy struct {
	MaxAttempts uint
	Delay       time.Duration
	RetryIf     func(error) bool
	OnRetry     func(attempt uint, err error)
	Timer       Timer
}

// Do executa op até ter sucesso, receber um erro não repetível ou esgotar as tentativas.
// Ao esgotar, retorna o último erro recebido.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt uint) error) error {
	attempt := uint(0)

	opts := []retrygo.Option{
		retrygo.Context(ctx),
		retrygo.Attempts(p.attempts()),
		retrygo.Delay(p.Delay),
		retrygo.DelayType(retrygo.FixedDelay),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(func(err error) bool {
			return p.RetryIf != nil && p.RetryIf(err)
		}),
	}
	if p.OnRetry != nil {
		opts = append(opts, retrygo.OnRetry(p.OnRetry))
	}
	if p.Timer != nil {
		opts = append(opts, retrygo.WithTimer(p.Timer))
	}

	return retrygo.Do(func() error {
		attempt++
		return op(ctx, attempt)
	}, opts...)
}

func (p Policy) attempts() uint {
	if p.MaxAttempts == 0 {
		return 1
	}
	return p.MaxAttempts
}
