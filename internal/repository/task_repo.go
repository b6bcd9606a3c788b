package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskFilter narrows List. Zero values mean "no restriction"; an empty
// filter returns every task in the store regardless of who asks.
type TaskFilter struct {
	Status       string
	Priority     string
	Organization string
	AssignedTo   *int64
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	AssignedTo   *[]int64
	Organization *string
}

type TaskRepository struct {
	db    *pgxpool.Pool
	users *UserRepository
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db, users: NewUserRepository(db)}
}

const taskColumns = `id, title, COALESCE(description, ''), status, priority, due_date,
	COALESCE(assigned_to, '{}'), created_by, COALESCE(organization, ''), comments, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var commentsJSON []byte
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.AssignedTo, &t.CreatedBy, &t.Organization, &commentsJSON, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Comments = []domain.Comment{}
	if len(commentsJSON) > 0 {
		if err := json.Unmarshal(commentsJSON, &t.Comments); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.Comments == nil {
		t.Comments = []domain.Comment{}
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []int64{}
	}
	commentsJSON, err := json.Marshal(t.Comments)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, assigned_to, created_by, organization, comments)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.AssignedTo, t.CreatedBy, t.Organization, commentsJSON,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// buildListFilter renders the WHERE clause for a filter. Kept separate so
// the clause construction is testable without a database.
func buildListFilter(f TaskFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Priority != "" {
		add("priority = $%d", f.Priority)
	}
	if f.Organization != "" {
		add("organization = $%d", f.Organization)
	}
	if f.AssignedTo != nil {
		add("$%d = ANY(assigned_to)", *f.AssignedTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns tasks matching the filter, assignees expanded. There is no
// implicit scoping to the caller's organization or assignments.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]*domain.Task, error) {
	where, args := buildListFilter(f)

	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.expandAssignees(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := r.expandAssignees(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies the non-nil fields of upd and returns the updated task.
// updated_at is always bumped.
func (r *TaskRepository) Update(ctx context.Context, id int64, upd TaskUpdate) (*domain.Task, error) {
	sets := []string{"updated_at = now()"}
	var args []any

	set := func(clause string, arg any) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf(clause, len(args)))
	}

	if upd.Title != nil {
		set("title = $%d", *upd.Title)
	}
	if upd.Description != nil {
		set("description = $%d", *upd.Description)
	}
	if upd.Status != nil {
		set("status = $%d", *upd.Status)
	}
	if upd.Priority != nil {
		set("priority = $%d", *upd.Priority)
	}
	if upd.DueDate != nil {
		set("due_date = $%d", *upd.DueDate)
	}
	if upd.AssignedTo != nil {
		set("assigned_to = $%d", *upd.AssignedTo)
	}
	if upd.Organization != nil {
		set("organization = $%d", *upd.Organization)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING `+taskColumns,
		strings.Join(sets, ", "), len(args))

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := r.expandAssignees(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task by id. Deleting an id that does not exist is not
// an error; the operation is idempotent.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// AddComment appends a comment to the task's ordered comment list.
func (r *TaskRepository) AddComment(ctx context.Context, id int64, c domain.Comment) (*domain.Task, error) {
	commentJSON, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.db.QueryRow(ctx,
		`UPDATE tasks SET comments = comments || $2::jsonb, updated_at = now()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		id, commentJSON,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := r.expandAssignees(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// expandAssignees resolves assigned_to ids to display-minimal user refs in
// one batch query. References to since-deleted users are skipped.
func (r *TaskRepository) expandAssignees(ctx context.Context, tasks []*domain.Task) error {
	var ids []int64
	seen := make(map[int64]bool)
	for _, t := range tasks {
		for _, id := range t.AssignedTo {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	refs, err := r.users.GetRefsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		t.Assignees = []domain.UserRef{}
		for _, id := range t.AssignedTo {
			if ref, ok := refs[id]; ok {
				t.Assignees = append(t.Assignees, ref)
			}
		}
	}
	return nil
}
