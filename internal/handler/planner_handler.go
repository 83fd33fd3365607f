package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/revision-planner-api/internal/dto"
	"github.com/noah-isme/revision-planner-api/internal/middleware"
	"github.com/noah-isme/revision-planner-api/internal/service"
	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
	"github.com/noah-isme/revision-planner-api/pkg/response"
)

type weekPlanner interface {
	Regenerate(ctx context.Context, userID string, req dto.PlanWeekRequest) (*dto.PlanResult, error)
	Adjust(ctx context.Context, userID string, req dto.PlanWeekRequest) (*dto.PlanResult, error)
	TopUp(ctx context.Context, userID, subjectID string, req dto.TopUpRequest) (*dto.PlanResult, error)
	WeekSessions(ctx context.Context, userID, weekStart string) (*dto.WeekSessions, bool, error)
	ExportWeek(ctx context.Context, userID, weekStart string, query dto.ExportQuery) (*service.ExportFile, error)
}

// PlannerHandler exposes the revision planner endpoints.
type PlannerHandler struct {
	service weekPlanner
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Regenerate godoc
// @Summary Regenerate a week of revision sessions
// @Description Purges the week's planned sessions that carry no invite and recomputes the week. Set dryRun to preview without persisting.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlanWeekRequest true "Week to plan"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planner/regenerate [post]
func (h *PlannerHandler) Regenerate(c *gin.Context) {
	h.handleRun(c, h.service.Regenerate)
}

// Adjust godoc
// @Summary Top up a week for subjects short of their target
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlanWeekRequest true "Week to adjust"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /planner/adjust [post]
func (h *PlannerHandler) Adjust(c *gin.Context) {
	h.handleRun(c, h.service.Adjust)
}

// TopUp godoc
// @Summary Reinforce a single subject within a week
// @Tags Planner
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body dto.TopUpRequest true "Week to reinforce"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/subjects/{id}/top-up [post]
func (h *PlannerHandler) TopUp(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid top-up payload"))
		return
	}
	result, err := h.service.TopUp(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, runMeta(result))
}

// WeekSessions godoc
// @Summary List the sessions of a week
// @Tags Planner
// @Produce json
// @Param weekStart path string true "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /planner/weeks/{weekStart}/sessions [get]
func (h *PlannerHandler) WeekSessions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.WeekQuery
	if err := c.ShouldBindUri(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid week"))
		return
	}
	week, cacheHit, err := h.service.WeekSessions(c.Request.Context(), claims.UserID, query.WeekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, week, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download a week's plan as CSV or PDF
// @Tags Planner
// @Produce text/csv
// @Produce application/pdf
// @Param weekStart path string true "Any date of the week (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /planner/weeks/{weekStart}/export [get]
func (h *PlannerHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.ExportWeek(c.Request.Context(), claims.UserID, c.Param("weekStart"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

type runFunc func(ctx context.Context, userID string, req dto.PlanWeekRequest) (*dto.PlanResult, error)

func (h *PlannerHandler) handleRun(c *gin.Context, run runFunc) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PlanWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planner payload"))
		return
	}
	result, err := run(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, runMeta(result))
}

func runMeta(result *dto.PlanResult) map[string]interface{} {
	preview := "committed"
	if result.DryRun {
		preview = "preview"
	}
	return map[string]interface{}{"mode": result.Mode, "persistence": preview}
}
