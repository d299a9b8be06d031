package calendar

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/handler"
	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/service/calendar"
)

type Handler struct {
	service *calendar.Service
}

func NewHandler(service *calendar.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cal := r.Group("/calendar")
	{
		cal.GET("/month", h.Month)
		cal.GET("/week", h.Week)
		cal.GET("/day", h.Day)
		cal.GET("/agenda", h.Agenda)
	}
}

type viewQuery struct {
	role          model.ParticipantRole
	participantID uuid.UUID
	date          time.Time
}

func (h *Handler) parseQuery(c *gin.Context, layout string) (*viewQuery, bool) {
	role := model.ParticipantRole(c.Query("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("role must be doctor or patient"))
		return nil, false
	}

	participantID, err := uuid.Parse(c.Query("participant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid participant ID"))
		return nil, false
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		date, err = time.Parse(layout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected "+layout))
			return nil, false
		}
	}

	return &viewQuery{role: role, participantID: participantID, date: date}, true
}

func (h *Handler) Month(c *gin.Context) {
	q, ok := h.parseQuery(c, "2006-01")
	if !ok {
		return
	}

	cells, err := h.service.Month(c.Request.Context(), q.role, q.participantID, q.date)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(cells))
}

func (h *Handler) Week(c *gin.Context) {
	q, ok := h.parseQuery(c, "2006-01-02")
	if !ok {
		return
	}

	days, err := h.service.Week(c.Request.Context(), q.role, q.participantID, q.date)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(days))
}

func (h *Handler) Day(c *gin.Context) {
	q, ok := h.parseQuery(c, "2006-01-02")
	if !ok {
		return
	}

	projection, err := h.service.Day(c.Request.Context(), q.role, q.participantID, q.date)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(projection))
}

func (h *Handler) Agenda(c *gin.Context) {
	q, ok := h.parseQuery(c, "2006-01-02")
	if !ok {
		return
	}

	agenda, err := h.service.Agenda(c.Request.Context(), q.role, q.participantID, q.date)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(agenda))
}
