package models

import "time"

// Enrollment captures a learner's registration to a course. The
// (user_id, course_id) pair is unique at the storage layer.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with learner and course info.
type EnrollmentDetail struct {
	Enrollment
	UserEmail   string `db:"user_email" json:"user_email"`
	CourseTitle string `db:"course_title" json:"course_title"`
}
