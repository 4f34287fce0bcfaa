// Package classifier defines the boundary to the host-injected prediction
// function. The engine never implements a model; it only wraps the injected
// callable with timeout and circuit-breaker protection.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/trustvector/adversary/pkg/types"
)

// PredictFunc is the sole external dependency of the engine. Implementations
// must return a label in {SPAM, NOT_SPAM} and a score in [0,1].
type PredictFunc func(ctx context.Context, text string) (types.Prediction, error)

// Error wraps any failure of the injected classifier, including timeouts.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("classifier call failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsClassifierError reports whether err originated at the classifier boundary.
func IsClassifierError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// WithTimeout bounds every call to predict with the given timeout. The only
// suspension point in the engine is this boundary, so a stuck classifier must
// never block a batch.
func WithTimeout(predict PredictFunc, timeout time.Duration) PredictFunc {
	return func(ctx context.Context, text string) (types.Prediction, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type outcome struct {
			pred types.Prediction
			err  error
		}
		ch := make(chan outcome, 1)
		go func() {
			pred, err := predict(callCtx, text)
			ch <- outcome{pred: pred, err: err}
		}()

		select {
		case out := <-ch:
			if out.err != nil {
				return types.Prediction{}, &Error{Err: out.err}
			}
			return out.pred, nil
		case <-callCtx.Done():
			return types.Prediction{}, &Error{Err: callCtx.Err()}
		}
	}
}

// WithBreaker shields the engine from a flapping classifier. Once the breaker
// opens, calls fail fast as classifier errors until the cool-down elapses.
func WithBreaker(predict PredictFunc, name string, cooldown time.Duration, maxFailures uint32) PredictFunc {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	breaker := gobreaker.NewCircuitBreaker(settings)

	return func(ctx context.Context, text string) (types.Prediction, error) {
		result, err := breaker.Execute(func() (interface{}, error) {
			return predict(ctx, text)
		})
		if err != nil {
			return types.Prediction{}, &Error{Err: fmt.Errorf("breaker (%s): %w", name, err)}
		}
		pred, ok := result.(types.Prediction)
		if !ok {
			return types.Prediction{}, &Error{Err: fmt.Errorf("breaker (%s): unexpected result type", name)}
		}
		return pred, nil
	}
}
