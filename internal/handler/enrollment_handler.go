package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillshareplus/skillshare-api/internal/middleware"
	"github.com/skillshareplus/skillshare-api/internal/models"
	"github.com/skillshareplus/skillshare-api/internal/service"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
	"github.com/skillshareplus/skillshare-api/pkg/response"
)

// EnrollmentHandler handles enrollment ledger endpoints.
type EnrollmentHandler struct {
	service *service.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Self-enroll the authenticated learner into a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	jwtClaims := claims.(*models.JWTClaims)

	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	meta := models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	enrollment, err := h.service.Enroll(c.Request.Context(), jwtClaims, req, meta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ListMine godoc
// @Summary List own enrollments
// @Description List all enrollments belonging to the caller
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /enrollments/me [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	jwtClaims := claims.(*models.JWTClaims)

	enrollments, err := h.service.ListForUser(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Unenroll godoc
// @Summary Unenroll from a course
// @Description Remove the caller's enrollment for the given course
// @Tags Enrollments
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{course_id} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	jwtClaims := claims.(*models.JWTClaims)

	meta := models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.Unenroll(c.Request.Context(), jwtClaims, c.Param("course_id"), meta); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListForCourse godoc
// @Summary List enrollments for a course
// @Description List all enrollments for a course (admin, or instructor owning the course)
// @Tags Enrollments
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/course/{course_id} [get]
func (h *EnrollmentHandler) ListForCourse(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	jwtClaims := claims.(*models.JWTClaims)

	enrollments, err := h.service.ListForCourse(c.Request.Context(), c.Param("course_id"), jwtClaims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollments, nil)
}

// ExportRoster godoc
// @Summary Export course roster
// @Description Download the course roster as CSV or PDF (admin, or instructor owning the course)
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param course_id path string true "Course ID"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/course/{course_id}/export [get]
func (h *EnrollmentHandler) ExportRoster(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	jwtClaims := claims.(*models.JWTClaims)

	courseID := c.Param("course_id")
	format := service.RosterFormat(c.DefaultQuery("format", "csv"))

	payload, contentType, err := h.service.ExportRoster(c.Request.Context(), courseID, jwtClaims, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if format == service.RosterFormatPDF {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="roster-%s.%s"`, courseID, ext))
	c.Data(http.StatusOK, contentType, payload)
}
