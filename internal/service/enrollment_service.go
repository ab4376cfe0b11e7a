package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillshareplus/skillshare-api/internal/models"
	"github.com/skillshareplus/skillshare-api/internal/repository"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
	"github.com/skillshareplus/skillshare-api/pkg/export"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, userID, courseID string) error
	ListByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollRequest represents payload for self-enrolling into a course.
type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// RosterFormat selects the roster export rendering.
type RosterFormat string

const (
	RosterFormatCSV RosterFormat = "csv"
	RosterFormatPDF RosterFormat = "pdf"
)

// EnrollmentService handles the enrollment ledger.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseReader
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, courses courseReader, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		audit:     audit,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Enroll registers the caller into a course. The storage unique index
// guarantees at most one enrollment per (user, course) pair even under
// concurrent duplicate requests.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *models.JWTClaims, req EnrollRequest, meta models.LoginRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	enrollment := &models.Enrollment{
		UserID:   actor.UserID,
		CourseID: req.CourseID,
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.recordAudit(ctx, actor, models.AuditActionEnroll, req.CourseID, meta)

	return enrollment, nil
}

// Unenroll removes the caller's enrollment for a course.
func (s *EnrollmentService) Unenroll(ctx context.Context, actor *models.JWTClaims, courseID string, meta models.LoginRequest) error {
	if err := s.repo.Delete(ctx, actor.UserID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}

	s.recordAudit(ctx, actor, models.AuditActionUnenroll, courseID, meta)

	return nil
}

// ListForUser returns the caller's enrollments.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	return enrollments, nil
}

// ListForCourse returns all enrollments for a course. Admins may list any
// course; instructors only their own.
func (s *EnrollmentService) ListForCourse(ctx context.Context, courseID string, actor *models.JWTClaims) ([]models.EnrollmentDetail, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleInstructor:
		if course.CreatedBy != actor.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized for this course")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized")
	}

	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	if enrollments == nil {
		enrollments = []models.EnrollmentDetail{}
	}
	return enrollments, nil
}

// ExportRoster renders the course roster as CSV or PDF, gated the same way
// as ListForCourse.
func (s *EnrollmentService) ExportRoster(ctx context.Context, courseID string, actor *models.JWTClaims, format RosterFormat) ([]byte, string, error) {
	enrollments, err := s.ListForCourse(ctx, courseID, actor)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Enrollment ID", "Learner Email", "Course", "Enrolled At"},
	}
	for _, e := range enrollments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Enrollment ID": e.ID,
			"Learner Email": e.UserEmail,
			"Course":        e.CourseTitle,
			"Enrolled At":   e.EnrolledAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	switch format {
	case RosterFormatPDF:
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Course Roster %s", courseID))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
		}
		return payload, "application/pdf", nil
	case RosterFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *EnrollmentService) recordAudit(ctx context.Context, actor *models.JWTClaims, action models.AuditAction, courseID string, meta models.LoginRequest) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "enrollment",
		ResourceID: &courseID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record enrollment audit log", zap.Error(err))
	}
}
