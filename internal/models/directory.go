package models

import "time"

// Counselor is a consultant owning students and leads. Used as a join key only.
type Counselor struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email,omitempty"`
}

// Partner is a university partner receiving applications and paying commissions.
type Partner struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Country string `db:"country" json:"country"`
}

// StudentProfile links applications to the counselor who manages the student.
type StudentProfile struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	CounselorID *string   `db:"counselor_id" json:"counselor_id,omitempty"`
	Nationality string    `db:"nationality" json:"nationality,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
