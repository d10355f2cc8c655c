package middleware

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
)

const msgInternalError = "internal error"

// AccessLog logs one line per request. A handler panic is logged and answered
// like any other unexpected failure: 200 with a generic success:false body.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", zap.Any("panic", rec), zap.ByteString("path", ctx.Path()))
					writeInternalError(ctx)
				}
				logger.Debug("request",
					zap.ByteString("method", ctx.Method()),
					zap.ByteString("path", ctx.Path()),
					zap.Int("status", ctx.Response.StatusCode()),
					zap.Duration("duration", time.Since(start)),
					zap.ByteString("request_id", ctx.Response.Header.Peek("X-Request-ID")),
				)
			}()
			next(ctx)
		}
	}
}

func writeInternalError(ctx *fasthttp.RequestCtx) {
	body, _ := json.Marshal(transport.MessageResponse{Success: false, Message: msgInternalError})
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}
