package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/reminder"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"
)

type ReminderHandler struct {
	service  *reminder.Service
	location *time.Location
}

func NewReminderHandler(service *reminder.Service, loc *time.Location) *ReminderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderHandler{
		service:  service,
		location: loc,
	}
}

type ReminderRequest struct {
	// Time accepts "15:04", "15:04:05" or RFC3339.
	Time       string                 `json:"time" binding:"required"`
	RepeatDays []domain.Weekday       `json:"repeat_days"`
	Enabled    *bool                  `json:"enabled"`
	Filter     *domain.QuestionFilter `json:"filter"`
}

type FailureResponse struct {
	TriggerID string `json:"trigger_id"`
	Error     string `json:"error"`
}

type ScheduleResponse struct {
	Retracted int               `json:"retracted"`
	Scheduled int               `json:"scheduled"`
	Failures  []FailureResponse `json:"failures,omitempty"`
	Skipped   bool              `json:"skipped,omitempty"`
}

type ReminderResponse struct {
	Reminder *domain.Reminder  `json:"reminder"`
	Summary  reminder.Summary  `json:"summary"`
	Schedule *ScheduleResponse `json:"schedule,omitempty"`
}

type ReminderListResponse struct {
	Reminders []reminder.Summary `json:"reminders"`
}

func (h *ReminderHandler) List(c *gin.Context) {
	summaries, err := h.service.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReminderListResponse{Reminders: summaries})
}

func (h *ReminderHandler) Get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(r, nil))
}

func (h *ReminderHandler) Create(c *gin.Context) {
	h.save(c, h.service.Save, "", http.StatusCreated)
}

func (h *ReminderHandler) Update(c *gin.Context) {
	h.save(c, h.service.Update, c.Param("id"), http.StatusOK)
}

type saveFunc func(ctx context.Context, in reminder.SaveInput) (*reminder.Saved, error)

func (h *ReminderHandler) save(c *gin.Context, store saveFunc, id string, status int) {
	ctx := c.Request.Context()

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "request validation failed",
			slog.String("error", err.Error()),
			slog.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	at, err := parseTime(req.Time, h.location)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	saved, err := store(ctx, reminder.SaveInput{
		ID:         id,
		Time:       at,
		RepeatDays: req.RepeatDays,
		Enabled:    enabled,
		Filter:     req.Filter,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(status, newReminderResponse(saved.Reminder, saved.Schedule))
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) Toggle(c *gin.Context) {
	saved, err := h.service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReminderResponse(saved.Reminder, saved.Schedule))
}

func (h *ReminderHandler) DisableAll(c *gin.Context) {
	changed, err := h.service.DisableAll(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReminderListResponse{Reminders: reminder.Summarize(changed)})
}

// Stream pushes the reminder list as server-sent events until the client goes away.
func (h *ReminderHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	snapshots, err := h.service.Observe(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	prepareSSE(c)
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snapshots:
			if !ok {
				return
			}
			c.SSEvent("reminders", ReminderListResponse{Reminders: s})
			c.Writer.Flush()
		}
	}
}

func newReminderResponse(r *domain.Reminder, result *scheduler.Result) ReminderResponse {
	resp := ReminderResponse{
		Reminder: r,
		Summary:  reminder.Summarize([]*domain.Reminder{r})[0],
	}
	if result != nil {
		resp.Schedule = &ScheduleResponse{
			Retracted: result.Retracted,
			Scheduled: len(result.Scheduled),
			Skipped:   result.Skipped,
		}
		for _, f := range result.Failures {
			resp.Schedule.Failures = append(resp.Schedule.Failures, FailureResponse{
				TriggerID: f.TriggerID,
				Error:     f.Err.Error(),
			})
		}
	}
	return resp
}

var timeLayouts = []string{"15:04", "15:04:05"}

func parseTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q must be HH:MM, HH:MM:SS or RFC3339", domain.ErrInvalidReminder, value)
}

func prepareSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}
