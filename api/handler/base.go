package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	appLogger "github.com/fastygo/todo/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		body = []byte(`{"success":false}`)
	}
	ctx.SetBody(body)
}

func (h baseHandler) respondFailure(ctx *fasthttp.RequestCtx, status int, message string) {
	h.respondJSON(ctx, status, transport.MessageResponse{Success: false, Message: message})
}

// respondError renders err following the API error convention. Unexpected
// errors are logged and replaced by fallback so internals never leak.
func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error, fallback string) {
	status, message, expected := mapError(err, fallback)
	if !expected {
		appLogger.WithRequestID(stdCtx, h.logger).Error(fallback,
			zap.String("path", string(ctx.Path())),
			zap.Error(err),
		)
	}
	h.respondFailure(ctx, status, message)
}

func mapError(err error, fallback string) (status int, message string, expected bool) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, domain.MessageOf(err, fallback), true
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, domain.MessageOf(err, fallback), true
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, domain.MessageOf(err, fallback), true
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusOK, domain.MessageOf(err, fallback), true
	default:
		return http.StatusOK, fallback, false
	}
}

func decodeJSON(ctx *fasthttp.RequestCtx, dst interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	return nil
}
