package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/internal/service"
	appErrors "github.com/noah-isme/school-core/pkg/errors"
	"github.com/noah-isme/school-core/pkg/response"
)

// ScheduleHandler manages schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param class_room query string false "Filter by classroom"
// @Param teacher_id query string false "Filter by teacher"
// @Param day_of_week query string false "Filter by day"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		Classroom: c.Query("class_room"),
		TeacherID: c.Query("teacher_id"),
		DayOfWeek: models.Day(c.Query("day_of_week")),
	}
	views, err := h.service.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, map[string]interface{}{"count": len(views)})
}

// ListByClassroom godoc
// @Summary Classroom timetable
// @Tags Schedules
// @Produce json
// @Param class_room query string true "Classroom, may contain a slash"
// @Success 200 {object} response.Envelope
// @Router /classrooms/schedules [get]
func (h *ScheduleHandler) ListByClassroom(c *gin.Context) {
	classroom := strings.TrimSpace(c.Query("class_room"))
	if classroom == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class_room is required"))
		return
	}
	views, err := h.service.ListByClassroom(c.Request.Context(), classroom)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// ListByTeacher godoc
// @Summary Teacher timetable
// @Tags Schedules
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/schedules [get]
func (h *ScheduleHandler) ListByTeacher(c *gin.Context) {
	views, err := h.service.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// Workload godoc
// @Summary Weekly periods per active teacher
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/workload [get]
func (h *ScheduleHandler) Workload(c *gin.Context) {
	rows, err := h.service.Workload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Check godoc
// @Summary Check whether a teacher's slot is taken
// @Tags Schedules
// @Produce json
// @Param teacher_id query string true "Teacher ID"
// @Param day query string true "Day of week"
// @Param period query int true "Period number"
// @Param exclude_id query int false "Entry to ignore"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [get]
func (h *ScheduleHandler) Check(c *gin.Context) {
	teacherID := strings.TrimSpace(c.Query("teacher_id"))
	day := strings.TrimSpace(c.Query("day"))
	if teacherID == "" || day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacher_id and day are required"))
		return
	}
	period, err := strconv.Atoi(c.Query("period"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be a number"))
		return
	}
	var excludeID int64
	if raw := c.Query("exclude_id"); raw != "" {
		if excludeID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exclude_id must be a number"))
			return
		}
	}

	conflict, err := h.service.Check(c.Request.Context(), teacherID, models.Day(day), period, excludeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	result := gin.H{"available": conflict == nil}
	if conflict != nil {
		result["conflict"] = conflict
		result["message"] = conflict.Message()
	}
	response.JSON(c, http.StatusOK, result)
}

// Create godoc
// @Summary Add schedule entry
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.ScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	response.Created(c, entry)
}

// BulkCreate godoc
// @Summary Add several schedule entries
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.BulkScheduleRequest true "Bulk payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/bulk [post]
func (h *ScheduleHandler) BulkCreate(c *gin.Context) {
	var req service.BulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.BulkAdd(c.Request.Context(), req)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	response.Created(c, result)
}

// Get godoc
// @Summary Get schedule entry
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Update godoc
// @Summary Replace schedule entry
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path int true "Schedule ID"
// @Param payload body service.ScheduleRequest true "Schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeScheduleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete schedule entry
// @Tags Schedules
// @Param id path int true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func scheduleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return 0, false
	}
	return id, true
}

// writeScheduleError attaches the occupying entry to conflict responses.
func writeScheduleError(c *gin.Context, err error) {
	var conflict *models.ScheduleConflictError
	if errors.As(err, &conflict) {
		response.Error(c, err, map[string]interface{}{"conflict": conflict.Conflict})
		return
	}
	response.Error(c, err)
}
