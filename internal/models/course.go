package models

import "time"

// DefaultCourseCategory is applied when a course is created without one.
const DefaultCourseCategory = "General"

// Course represents a published course owned by its creator.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Category  string
	CreatedBy string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
