package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/propman/backend/internal/application/billing"
	noticeapp "github.com/propman/backend/internal/application/notice"
	"github.com/propman/backend/internal/interfaces/http/dto"
)

// Pinger checks storage liveness
type Pinger interface {
	Ping() error
}

// SweepRunner exposes the on-demand sweep entry points
type SweepRunner interface {
	TriggerEscalation(ctx context.Context) (billingapp.SweepStats, error)
	TriggerReminder(ctx context.Context) (noticeapp.ReminderStats, error)
}

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db     Pinger
	sweeps SweepRunner
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, sweeps SweepRunner) *SystemHandler {
	return &SystemHandler{db: db, sweeps: sweeps}
}

// HealthResponse is the health probe payload
type HealthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health reports process and database liveness
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Time:     time.Now().UTC(),
	}

	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}

	h.Success(c, resp)
}

// RunEscalationSweep triggers the overdue escalation sweep immediately.
// Staff only; scheduled runs use the system actor internally.
func (h *SystemHandler) RunEscalationSweep(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok || !actor.Type.IsStaff() {
		c.JSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Only staff may trigger sweeps"))
		return
	}

	stats, err := h.sweeps.TriggerEscalation(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// RunReminderSweep triggers the contract expiry reminder sweep immediately
func (h *SystemHandler) RunReminderSweep(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok || !actor.Type.IsStaff() {
		c.JSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Only staff may trigger sweeps"))
		return
	}

	stats, err := h.sweeps.TriggerReminder(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.POST("/sweeps/escalation", h.RunEscalationSweep)
		system.POST("/sweeps/reminder", h.RunReminderSweep)
	}
}

// RegisterHealthRoute registers the unauthenticated health probe
func (h *SystemHandler) RegisterHealthRoute(engine *gin.Engine) {
	engine.GET("/health", h.Health)
}
