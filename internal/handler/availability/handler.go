package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/handler"
	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/service/availability"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	avail := r.Group("/availability/:doctorID")
	{
		avail.GET("", h.Get)
		avail.PUT("", h.Update)
		avail.GET("/check", h.CheckWindow)
	}
}

func (h *Handler) Get(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	profile, err := h.service.Get(c.Request.Context(), doctorID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) Update(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), doctorID, &req)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) CheckWindow(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("doctorID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	day := c.Query("day")
	start := c.Query("start")
	end := c.Query("end")
	if day == "" || start == "" || end == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("day, start and end are required"))
		return
	}

	bookable, err := h.service.CheckWindow(c.Request.Context(), doctorID, day, start, end)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"bookable": bookable}))
}
