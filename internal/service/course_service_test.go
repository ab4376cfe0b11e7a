package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillshareplus/skillshare-api/internal/models"
	appErrors "github.com/skillshareplus/skillshare-api/pkg/errors"
)

type mockCourseRepo struct {
	courseByID *models.Course
	findErr    error
	courses    []models.Course
	total      int
	listErr    error
	createErr  error
	created    *models.Course
	updated    *models.Course
	deleteErr  error
	deletedID  string
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.courseByID, nil
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.courses, m.total, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.updated = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, nil, false)
}

func instructorClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Email: id + "@example.com", Role: models.RoleInstructor}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Email: "admin@example.com", Role: models.RoleAdmin}
}

func TestCourseServiceCreateSetsOwnerAndDefaults(t *testing.T) {
	repo := &mockCourseRepo{}
	audit := &mockAudit{}
	svc := NewCourseService(repo, audit, disabledCache(), nil, nil)

	course, err := svc.Create(context.Background(), CreateCourseRequest{Title: "Go Basics"}, instructorClaims("i1"), models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "i1", course.CreatedBy)
	assert.Equal(t, models.DefaultCourseCategory, course.Category)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCourseCreate, audit.logs[0].Action)
}

func TestCourseServiceCreateRequiresTitle(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, nil, disabledCache(), nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{}, instructorClaims("i1"), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceGetNotFound(t *testing.T) {
	repo := &mockCourseRepo{findErr: sql.ErrNoRows}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateByOwner(t *testing.T) {
	repo := &mockCourseRepo{courseByID: &models.Course{ID: "c1", Title: "Old", Category: "General", CreatedBy: "i1"}}
	svc := NewCourseService(repo, &mockAudit{}, disabledCache(), nil, nil)

	course, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Title: "New", Description: "desc"}, instructorClaims("i1"), models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New", course.Title)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "New", repo.updated.Title)
}

func TestCourseServiceUpdateByNonOwnerInstructorForbidden(t *testing.T) {
	repo := &mockCourseRepo{courseByID: &models.Course{ID: "c1", Title: "Old", CreatedBy: "i1"}}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	_, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Title: "Hijack"}, instructorClaims("i2"), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}

func TestCourseServiceUpdateByAdminBypassesOwnership(t *testing.T) {
	repo := &mockCourseRepo{courseByID: &models.Course{ID: "c1", Title: "Old", CreatedBy: "i1"}}
	svc := NewCourseService(repo, &mockAudit{}, disabledCache(), nil, nil)

	course, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Title: "Admin Edit"}, adminClaims(), models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Admin Edit", course.Title)
}

func TestCourseServiceUpdateKeepsCategoryWhenOmitted(t *testing.T) {
	repo := &mockCourseRepo{courseByID: &models.Course{ID: "c1", Title: "Old", Category: "Design", CreatedBy: "i1"}}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	course, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Title: "New"}, instructorClaims("i1"), models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Design", course.Category)
}

func TestCourseServiceDeleteNonAdminForbidden(t *testing.T) {
	repo := &mockCourseRepo{courseByID: &models.Course{ID: "c1", CreatedBy: "i1"}}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	err := svc.Delete(context.Background(), "c1", instructorClaims("i1"), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedID)
}

func TestCourseServiceDeleteMissingCourse(t *testing.T) {
	repo := &mockCourseRepo{deleteErr: sql.ErrNoRows}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	err := svc.Delete(context.Background(), "missing", adminClaims(), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceDeleteByAdmin(t *testing.T) {
	repo := &mockCourseRepo{}
	audit := &mockAudit{}
	svc := NewCourseService(repo, audit, disabledCache(), nil, nil)

	err := svc.Delete(context.Background(), "c1", adminClaims(), models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "c1", repo.deletedID)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCourseDelete, audit.logs[0].Action)
}

func TestCourseServiceListPaginationDefaults(t *testing.T) {
	repo := &mockCourseRepo{courses: []models.Course{{ID: "c1", Title: "Go"}}, total: 41}
	svc := NewCourseService(repo, nil, disabledCache(), nil, nil)

	courses, pagination, err := svc.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
}
