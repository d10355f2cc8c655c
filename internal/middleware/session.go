package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/sessiontoken"
	authUC "github.com/fastygo/todo/usecase/auth"
)

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Sessions resolves the session cookie into a domain.Session.
type Sessions struct {
	auth    *authUC.UseCase
	cookie  *sessiontoken.Cookie
	timeout time.Duration
	logger  *zap.Logger
}

func NewSessions(auth *authUC.UseCase, cookie *sessiontoken.Cookie, timeout time.Duration, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Sessions{auth: auth, cookie: cookie, timeout: timeout, logger: logger}
}

// Require rejects requests without a valid session with 401.
func (s *Sessions) Require(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !s.attach(ctx) {
			ctx.Response.Header.SetContentType("application/json")
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			body, _ := json.Marshal(transport.MessageResponse{Message: domain.ErrUnauthorized.Message})
			ctx.SetBody(body)
			return
		}
		next(ctx)
	}
}

// Optional attaches the session when one is present and always calls next.
func (s *Sessions) Optional(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		s.attach(ctx)
		next(ctx)
	}
}

func (s *Sessions) attach(ctx *fasthttp.RequestCtx) bool {
	sessionID, err := s.cookie.Read(ctx)
	if err != nil {
		return false
	}

	stdCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	session, err := s.auth.GetSession(stdCtx, sessionID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			s.logger.Error("session lookup failed", zap.Error(err))
		}
		return false
	}

	refreshed, err := s.auth.RefreshSession(stdCtx, session)
	switch {
	case err != nil:
		s.logger.Warn("session refresh failed", zap.String("user_id", session.UserID), zap.Error(err))
	case !refreshed.ExpiresAt.Equal(session.ExpiresAt):
		if err := s.cookie.Write(ctx, refreshed.ID, refreshed.ExpiresAt); err != nil {
			s.logger.Warn("session cookie rewrite failed", zap.Error(err))
		}
		session = refreshed
	}

	httpcontext.WithSession(ctx, session)
	return true
}
