package utils

import (
	"context"
	"runtime/debug"

	"twse-announcements/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicLogger.Error("Recovered from panic in goroutine",
					logger.Field("panic", r),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

var panicLogger = logger.NewNop()

// SetPanicLogger sets the logger GoSafe reports recovered panics to.
func SetPanicLogger(l *logger.Logger) {
	if l != nil {
		panicLogger = l
	}
}

// ShouldContinue reports whether ctx is still live, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		if log != nil {
			log.Warn("Context done, stopping work", logger.ErrorField(ctx.Err()))
		}
		return false
	default:
		return true
	}
}
