package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// The request context is replaced with a background context so the work
// survives the HTTP response, but the logger is preserved.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
