package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-core/internal/grading"
	"github.com/noah-isme/school-core/internal/service"
	appErrors "github.com/noah-isme/school-core/pkg/errors"
	"github.com/noah-isme/school-core/pkg/response"
)

// GradeHandler exposes grade recording endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs a GradeHandler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Save godoc
// @Summary Record or replace a subject score
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.SaveGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [put]
func (h *GradeHandler) Save(c *gin.Context) {
	var req service.SaveGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// List godoc
// @Summary Student grades for a term
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param academic_year query string false "Academic year"
// @Param semester query string false "Semester"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	grades, err := h.service.List(c.Request.Context(), c.Param("id"), c.Query("academic_year"), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// Transcript godoc
// @Summary Student transcript grouped by term
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *GradeHandler) Transcript(c *gin.Context) {
	transcript, err := h.service.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript)
}

// Classify godoc
// @Summary Grade label for a score
// @Tags Grades
// @Produce json
// @Param score query number false "Score; omit for an ungraded result"
// @Success 200 {object} response.Envelope
// @Router /grades/classify [get]
func (h *GradeHandler) Classify(c *gin.Context) {
	var score *float64
	if raw := c.Query("score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "score must be a number"))
			return
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "score must be a finite number"))
			return
		}
		score = &v
	}
	response.JSON(c, http.StatusOK, gin.H{"score": score, "grade": grading.Classify(score)})
}
