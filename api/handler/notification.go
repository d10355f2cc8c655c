package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/usecase"
)

const msgNotificationsDisabled = "notifications are disabled"

// DueChecker runs the due-tomorrow reminder on demand.
type DueChecker interface {
	CheckDueTomorrow(ctx context.Context)
}

type NotificationHandler struct {
	baseHandler
	notifier usecase.Notifier
	checker  DueChecker
}

// NewNotificationHandler accepts a nil checker when the reminder is not scheduled.
func NewNotificationHandler(notifier usecase.Notifier, checker DueChecker, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		notifier:    notifier,
		checker:     checker,
	}
}

// @Summary Send a test message to the webhook
// @Tags notifications
// @Router /api/test/notification [get]
func (h *NotificationHandler) SendTest(ctx *fasthttp.RequestCtx) {
	if !h.enabled() {
		h.respondFailure(ctx, http.StatusOK, msgNotificationsDisabled)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.notifier.SendTest(stdCtx)
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Success: true, Message: "test notification sent"})
}

// @Summary Run the due-tomorrow check now
// @Tags notifications
// @Router /api/test/check-tomorrow [get]
func (h *NotificationHandler) CheckTomorrow(ctx *fasthttp.RequestCtx) {
	if !h.enabled() || h.checker == nil {
		h.respondFailure(ctx, http.StatusOK, msgNotificationsDisabled)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.checker.CheckDueTomorrow(stdCtx)
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Success: true, Message: "due-tomorrow check executed"})
}

func (h *NotificationHandler) enabled() bool {
	return h.notifier != nil && h.notifier.Enabled()
}
