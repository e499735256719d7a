package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/session"
)

// HandlerFunc executes one command for a session and returns its reply
type HandlerFunc func(ctx context.Context, sess *session.Session, cmd Command) (string, error)

// Middleware wraps a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// Chain applies middlewares so that the first one listed runs outermost
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Logging logs every command with its outcome
func Logging(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, sess *session.Session, cmd Command) (string, error) {
			start := time.Now()
			reply, err := next(ctx, sess, cmd)

			attrs := []any{
				slog.String("verb", cmd.Verb),
				slog.String("conn_id", sess.ID()),
				slog.Duration("duration", time.Since(start)),
			}
			if h := sess.Handle(); h != "" {
				attrs = append(attrs, slog.String("handle", h))
			}
			switch {
			case err == nil:
				logger.Info("command handled", attrs...)
			case model.KindOf(err) == model.KindInternal:
				logger.Error("command failed", append(attrs, slog.String("error", err.Error()))...)
			default:
				logger.Info("command rejected", append(attrs,
					slog.String("error", err.Error()),
					slog.String("kind", model.KindOf(err).String()))...)
			}
			return reply, err
		}
	}
}

// Recovery turns a panic in one command into an internal error for that
// connection only
func Recovery(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, sess *session.Session, cmd Command) (reply string, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered",
						slog.Any("error", r),
						slog.String("stack", string(debug.Stack())),
						slog.String("verb", cmd.Verb),
						slog.String("conn_id", sess.ID()),
					)
					reply, err = "", fmt.Errorf("%w: %v", errInternal, r)
				}
			}()
			return next(ctx, sess, cmd)
		}
	}
}
