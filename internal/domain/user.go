package domain

import "time"

// User roles. New registrations default to RoleUser; the role is carried
// as a token claim, not re-read from the database per request.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `db:"id" json:"_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Organization string    `db:"organization" json:"organization"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// UserRef is the display-minimal projection used when expanding task
// assignees and when listing users.
type UserRef struct {
	ID    int64  `db:"id" json:"_id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
