package domain

import "time"

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Comment is a subdocument owned by its task; the list is ordered by
// insertion and never shared across tasks.
type Comment struct {
	UserID    int64     `json:"user"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID           int64      `db:"id" json:"_id"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Status       string     `db:"status" json:"status"`
	Priority     string     `db:"priority" json:"priority"`
	DueDate      *time.Time `db:"due_date" json:"dueDate,omitempty"`
	AssignedTo   []int64    `db:"assigned_to" json:"-"`
	CreatedBy    int64      `db:"created_by" json:"createdBy"`
	Organization string     `db:"organization" json:"organization"`
	Comments     []Comment  `db:"comments" json:"comments"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`

	// Assignees carries the expanded assignedTo references in responses.
	// Order matches the stored assigned_to array.
	Assignees []UserRef `db:"-" json:"assignedTo"`
}
