package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	appLogger "github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/pkg/sessiontoken"
	authUC "github.com/fastygo/todo/usecase/auth"
)

const (
	msgRegisterFailed = "registration failed"
	msgLoginFailed    = "login failed"
	msgLogoutFailed   = "logout failed"
	msgBadCredentials = "invalid username or password"
	msgMissingFields  = "username and password are required"
)

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	cookie *sessiontoken.Cookie
}

func NewAuthHandler(uc *authUC.UseCase, cookie *sessiontoken.Cookie, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookie:      cookie,
	}
}

// @Summary Register a user and start a session
// @Tags auth
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CredentialsRequest
	if err := decodeJSON(ctx, &req); err != nil {
		h.respondError(stdCtx, ctx, err, msgRegisterFailed)
		return
	}

	user, err := h.uc.Register(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgRegisterFailed)
		return
	}
	// The account exists from here on; a session failure only means the
	// caller has to log in explicitly.
	if err := h.startSession(stdCtx, ctx, user); err != nil {
		appLogger.WithRequestID(stdCtx, h.logger).Error("user registered but session could not be started",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	h.respondJSON(ctx, http.StatusOK, transport.UserResponse{Success: true, User: transport.NewUserView(user)})
}

// @Summary Log in with username and password
// @Tags auth
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CredentialsRequest
	if err := decodeJSON(ctx, &req); err != nil {
		h.respondError(stdCtx, ctx, err, msgLoginFailed)
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondFailure(ctx, http.StatusOK, msgMissingFields)
		return
	}

	user, ok, err := h.uc.Authenticate(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondError(stdCtx, ctx, err, msgLoginFailed)
		return
	}
	if !ok {
		h.respondFailure(ctx, http.StatusOK, msgBadCredentials)
		return
	}
	if err := h.startSession(stdCtx, ctx, user); err != nil {
		h.respondError(stdCtx, ctx, err, msgLoginFailed)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.UserResponse{Success: true, User: transport.NewUserView(user)})
}

// @Summary Revoke the current session
// @Tags auth
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, ok := httpcontext.SessionFrom(ctx)
	if !ok {
		h.respondError(stdCtx, ctx, domain.ErrUnauthorized, msgLogoutFailed)
		return
	}
	if err := h.uc.RevokeSession(stdCtx, session.ID); err != nil {
		h.respondError(stdCtx, ctx, err, msgLogoutFailed)
		return
	}

	h.cookie.Clear(ctx)
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Success: true})
}

// @Summary Report whether the caller has a session
// @Tags auth
// @Router /api/auth/check [get]
func (h *AuthHandler) Check(ctx *fasthttp.RequestCtx) {
	session, ok := httpcontext.SessionFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusOK, transport.AuthCheckResponse{Authenticated: false})
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.AuthCheckResponse{
		Authenticated: true,
		User:          &transport.UserView{ID: session.UserID, Username: session.Username},
	})
}

func (h *AuthHandler) startSession(stdCtx context.Context, ctx *fasthttp.RequestCtx, user *domain.User) error {
	session, err := h.uc.CreateSession(stdCtx, user)
	if err != nil {
		return err
	}
	return h.cookie.Write(ctx, session.ID, session.ExpiresAt)
}
