package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/navigation"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/resolver"
)

// Reconciler resyncs every stored reminder.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// Deliverer is a notification center that fires pushed-back triggers to its delegate.
type Deliverer interface {
	Deliver(ctx context.Context, trigger domain.Trigger) (domain.Notification, error)
}

type NotificationHandlerOption func(*NotificationHandler)

// WithDeliverer sends delivered triggers through the notification center instead of
// straight to the resolver.
func WithDeliverer(d Deliverer) NotificationHandlerOption {
	return func(h *NotificationHandler) {
		h.deliverer = d
	}
}

type NotificationHandler struct {
	resolver   *resolver.Service
	authorizer domain.Authorizer
	reconciler Reconciler
	hub        *navigation.Hub
	deliverer  Deliverer
	now        func() time.Time
}

func NewNotificationHandler(
	resolver *resolver.Service,
	authorizer domain.Authorizer,
	reconciler Reconciler,
	hub *navigation.Hub,
	opts ...NotificationHandlerOption,
) *NotificationHandler {
	h := &NotificationHandler{
		resolver:   resolver,
		authorizer: authorizer,
		reconciler: reconciler,
		hub:        hub,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type ActivateRequest struct {
	Payload  map[string]string `json:"payload" binding:"required"`
	ActionID string            `json:"action_id"`
}

type ActivateResponse struct {
	QuestionID int64  `json:"question_id"`
	ReminderID string `json:"reminder_id"`
}

type PresentResponse struct {
	Show    bool                       `json:"show"`
	Options domain.PresentationOptions `json:"options"`
}

type AuthorizationRequest struct {
	Granted *bool `json:"granted" binding:"required"`
}

type AuthorizationResponse struct {
	Status domain.AuthorizationStatus `json:"status"`
}

// Activate resolves a tapped notification to the question to open. 204 means there is
// nothing to open.
func (h *NotificationHandler) Activate(c *gin.Context) {
	ctx := c.Request.Context()

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	intent, err := h.resolver.OnActivated(ctx, req.Payload)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if intent == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, ActivateResponse{
		QuestionID: intent.QuestionID,
		ReminderID: intent.ReminderID,
	})
}

// Present reports how a notification firing in the foreground is shown.
func (h *NotificationHandler) Present(c *gin.Context) {
	var trigger domain.Trigger
	if err := c.ShouldBindJSON(&trigger); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	options := h.resolver.OnPresented(c.Request.Context(), domain.Notification{
		Trigger:     trigger,
		DeliveredAt: h.now(),
	})

	c.JSON(http.StatusOK, PresentResponse{Show: options.Show(), Options: options})
}

// Deliver is the push target of the Cloud Tasks backend; the task body is the trigger.
func (h *NotificationHandler) Deliver(c *gin.Context) {
	ctx := c.Request.Context()

	var trigger domain.Trigger
	if err := c.ShouldBindJSON(&trigger); err != nil {
		slog.WarnContext(ctx, "invalid delivered trigger",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	slog.InfoContext(ctx, "trigger delivered",
		slog.String("trigger_id", trigger.ID),
		slog.String("task_name", c.GetHeader("X-CloudTasks-TaskName")),
	)

	if h.deliverer == nil {
		h.resolver.OnPresented(ctx, domain.Notification{
			Trigger:     trigger,
			DeliveredAt: h.now(),
		})
		c.Status(http.StatusNoContent)
		return
	}

	if _, err := h.deliverer.Deliver(ctx, trigger); err != nil {
		slog.ErrorContext(ctx, "failed to deliver trigger",
			slog.String("trigger_id", trigger.ID),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusServiceUnavailable, "delivery_failed", err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) GetAuthorization(c *gin.Context) {
	status, err := h.authorizer.AuthorizationStatus(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthorizationResponse{Status: status})
}

// SetAuthorization records the user's permission answer. Granting it reschedules
// every reminder, since resyncs were skipped while it was denied.
func (h *NotificationHandler) SetAuthorization(c *gin.Context) {
	ctx := c.Request.Context()

	var req AuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	status := domain.AuthorizationDenied
	if *req.Granted {
		status = domain.AuthorizationGranted
	}

	if err := h.authorizer.SetAuthorization(ctx, status); err != nil {
		respondDomainError(c, err)
		return
	}

	slog.InfoContext(ctx, "notification authorization updated",
		slog.String("status", string(status)),
	)

	if status == domain.AuthorizationGranted && h.reconciler != nil {
		if err := h.reconciler.Reconcile(ctx); err != nil {
			slog.WarnContext(ctx, "failed to reschedule reminders after authorization",
				slog.String("error", err.Error()),
			)
		}
	}

	c.JSON(http.StatusOK, AuthorizationResponse{Status: status})
}

// NavigationStream pushes navigation hub events as server-sent events.
func (h *NotificationHandler) NavigationStream(c *gin.Context) {
	ctx := c.Request.Context()
	events := h.hub.Subscribe(ctx)

	prepareSSE(c)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
			c.Writer.Flush()
		}
	}
}
