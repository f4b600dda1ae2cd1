package ai

import (
	"context"
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/domain"
)

// Clock fuente de temporizadores; los tests inyectan uno controlado.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock reloj del sistema.
var SystemClock Clock = realClock{}

// CallWithDeadline ejecuta fn con un plazo explícito. Si el plazo vence antes,
// cancela el contexto de fn y devuelve domain.ErrGeneratorTimeout.
func CallWithDeadline[T any](ctx context.Context, clock Clock, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if clock == nil {
		clock = SystemClock
	}
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(callCtx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-clock.After(d):
		return zero, domain.ErrGeneratorTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
