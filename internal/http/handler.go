package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/http/middleware"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/service"
)

type Handler struct {
	planning       *service.PlanningService
	certifications *service.CertificationService
	log            zerolog.Logger
}

func NewHandler(planning *service.PlanningService, certifications *service.CertificationService, log zerolog.Logger) *Handler {
	return &Handler{planning: planning, certifications: certifications, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/tasks/:id/unit-price", h.taskUnitPrice)
	protected.POST("/projects/:id/schedule", h.scheduleProject)
	protected.GET("/projects/:id/budget/export", h.exportBudget)
	protected.POST("/contracts/:id/certifications", h.createCertification)
	protected.GET("/certifications/:id/pdf", h.certificationPDF)
}

func (h *Handler) taskUnitPrice(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	price, err := h.planning.TaskUnitPrice(c.Request.Context(), taskID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	missing := make([]gin.H, 0, len(price.MissingRefs))
	for _, ref := range price.MissingRefs {
		missing = append(missing, gin.H{"kind": ref.Kind, "id": ref.ID})
	}
	c.JSON(http.StatusOK, gin.H{
		"material_cost": price.MaterialCost,
		"tool_cost":     price.ToolCost,
		"labor_cost":    price.LaborCost,
		"fixed_cost":    price.FixedCost,
		"total":         price.Total,
		"missing_refs":  missing,
	})
}

type scheduleProjectRequest struct {
	StartDate string `json:"start_date"`
}

func (h *Handler) scheduleProject(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	input := service.ScheduleProjectInput{ProjectID: projectID, Principal: principal}

	var req scheduleProjectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.StartDate != "" {
			start, err := parseDate(req.StartDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
				return
			}
			input.StartOverride = &start
		}
	}

	result, err := h.planning.ScheduleProject(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	activities := make([]gin.H, 0, len(result.Scheduled))
	for _, activity := range result.Scheduled {
		activities = append(activities, gin.H{
			"item_id":       activity.ItemID,
			"task_id":       activity.TaskID,
			"start":         activity.Start.Format("2006-01-02"),
			"end":           activity.End.Format("2006-01-02"),
			"duration_days": activity.Duration,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"project_id": result.ProjectID,
		"scheduled":  activities,
		"unresolved": result.Unresolved,
	})
}

func (h *Handler) exportBudget(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	result, err := h.planning.ExportBudget(c.Request.Context(), projectID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

type certificationLineRequest struct {
	ContractItemID string  `json:"contract_item_id" binding:"required"`
	Percent        float64 `json:"percent"`
}

type createCertificationRequest struct {
	PeriodStart string                     `json:"period_start" binding:"required"`
	PeriodEnd   string                     `json:"period_end" binding:"required"`
	Lines       []certificationLineRequest `json:"lines" binding:"required"`
}

func (h *Handler) createCertification(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req createCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_start"})
		return
	}
	end, err := parseDate(req.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period_end"})
		return
	}

	lines := make([]service.CertificationLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		itemID, err := uuid.Parse(strings.TrimSpace(line.ContractItemID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract_item_id"})
			return
		}
		lines = append(lines, service.CertificationLineInput{
			ContractItemID:    itemID,
			PercentThisPeriod: line.Percent,
		})
	}

	cert, err := h.certifications.CreateCertification(c.Request.Context(), service.CreateCertificationInput{
		ContractID:  contractID,
		PeriodStart: start,
		PeriodEnd:   end,
		Lines:       lines,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":               cert.ID,
		"number":           cert.Number,
		"period_start":     cert.PeriodStart.Format("2006-01-02"),
		"period_end":       cert.PeriodEnd.Format("2006-01-02"),
		"gross_amount":     cert.GrossAmount,
		"retention_pct":    cert.RetentionPct,
		"retention_amount": cert.RetentionAmount,
		"net_amount":       cert.NetAmount,
		"status":           cert.Status,
	})
}

func (h *Handler) certificationPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	certID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certification id"})
		return
	}

	result, err := h.certifications.CertificationPDF(c.Request.Context(), certID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDocumentsExpired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNothingToCertify):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
