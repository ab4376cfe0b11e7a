package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillshareplus/skillshare-api/internal/models"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
)

const courseCachePrefix = "courses"

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest represents payload for creating courses.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateCourseRequest payload for updating courses.
type UpdateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CourseService handles catalog workflows with ownership-scoped mutation.
type CourseService struct {
	repo      courseRepository
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates an instance of CourseService.
func NewCourseService(repo courseRepository, audit auditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// Create adds a new course owned by the caller.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest, actor *models.JWTClaims, meta models.LoginRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create course payload")
	}

	category := req.Category
	if category == "" {
		category = models.DefaultCourseCategory
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		CreatedBy:   actor.UserID,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateCache(ctx)
	s.recordAudit(ctx, actor, models.AuditActionCourseCreate, course.ID, meta)

	return course, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	cacheKey := fmt.Sprintf("%s:item:%s", courseCachePrefix, id)
	if s.cache.Enabled() {
		var cached models.Course
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.cache.Set(ctx, cacheKey, course, 0); err != nil {
		s.logger.Debug("course cache set skipped", zap.Error(err))
	}

	return course, nil
}

// List returns paginated courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	type cachedList struct {
		Courses []models.Course `json:"courses"`
		Total   int             `json:"total"`
	}

	cacheKey := fmt.Sprintf("%s:list:%s:%s:%s:%d:%d:%s:%s", courseCachePrefix,
		filter.Category, filter.CreatedBy, filter.Search, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)

	var courses []models.Course
	var total int

	var cached cachedList
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		courses, total = cached.Courses, cached.Total
	} else {
		var err error
		courses, total, err = s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
		}
		if err := s.cache.Set(ctx, cacheKey, cachedList{Courses: courses, Total: total}, 0); err != nil {
			s.logger.Debug("course list cache set skipped", zap.Error(err))
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return courses, pagination, nil
}

// Update modifies a course. Instructors may only update courses they own.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest, actor *models.JWTClaims, meta models.LoginRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if actor.Role != models.RoleAdmin && course.CreatedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to update this course")
	}

	course.Title = req.Title
	course.Description = req.Description
	if req.Category != "" {
		course.Category = req.Category
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateCache(ctx)
	s.recordAudit(ctx, actor, models.AuditActionCourseUpdate, course.ID, meta)

	return course, nil
}

// Delete removes a course along with its enrollments. Admin only.
func (s *CourseService) Delete(ctx context.Context, id string, actor *models.JWTClaims, meta models.LoginRequest) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can delete courses")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.invalidateCache(ctx)
	s.recordAudit(ctx, actor, models.AuditActionCourseDelete, id, meta)

	return nil
}

func (s *CourseService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, courseCachePrefix+":*"); err != nil {
		s.logger.Debug("course cache invalidation skipped", zap.Error(err))
	}
}

func (s *CourseService) recordAudit(ctx context.Context, actor *models.JWTClaims, action models.AuditAction, resourceID string, meta models.LoginRequest) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "course",
		ResourceID: &resourceID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record course audit log", zap.Error(err))
	}
}
