package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/api/transport"
	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
)

// ActorResolver turns a user ID into the identity used for access checks.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (domain.Actor, error)
}

// ResolveActor loads the actor for the authenticated user and stores it on the
// request. It must run after JWTAuth.
func ResolveActor(resolver ActorResolver, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			userID := string(ctx.Request.Header.Peek("X-User-ID"))
			stdCtx, cancel := context.WithTimeout(context.Background(), timeout)
			actor, err := resolver.ResolveActor(stdCtx, userID)
			cancel()
			if err != nil {
				status := fasthttp.StatusUnauthorized
				code := domain.ErrCodeUnauthorized
				switch {
				case domain.IsDomainError(err, domain.ErrCodeForbidden):
					status, code = fasthttp.StatusForbidden, domain.ErrCodeForbidden
				case !domain.IsDomainError(err, domain.ErrCodeUnauthorized):
					logger.Error("actor resolution failed", zap.String("user_id", userID), zap.Error(err))
					status, code = fasthttp.StatusInternalServerError, domain.ErrCodeInternal
				}
				body, _ := json.Marshal(transport.NewError(string(code), err.Error(), nil))
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(status)
				ctx.SetBody(body)
				return
			}
			httpcontext.SetActor(ctx, actor)
			next(ctx)
		}
	}
}
