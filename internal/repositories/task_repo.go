package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorse/taskdeck/internal/database"
	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, project_id, assignee_id, title, description, status, priority, due_date, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{pool: db.Pool}
}

func scanTaskRow(scanner rowScanner) (*models.Task, error) {
	var t models.Task
	var assigneeID *string
	var dueDate *time.Time

	err := scanner.Scan(
		&t.ID, &t.ProjectID, &assigneeID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	t.AssigneeID = assigneeID
	t.DueDate = dueDate
	return &t, nil
}

func scanTaskRows(rows pgx.Rows) ([]*models.Task, error) {
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	t.ID = uuid.New().String()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}

	query := `
		INSERT INTO tasks (id, project_id, assignee_id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + taskColumns

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		t.ID, t.ProjectID, t.AssigneeID, t.Title, t.Description,
		t.Status, t.Priority, t.DueDate, t.CreatedAt, t.UpdatedAt,
	))
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTaskRow(r.pool.QueryRow(ctx, query, id))
}

// TaskFilter narrows List results. Empty fields match everything.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     string
	Priority   string
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (NULLIF($1, '') IS NULL OR project_id = $1::uuid)
			AND (NULLIF($2, '') IS NULL OR assignee_id = $2::uuid)
			AND (NULLIF($3, '') IS NULL OR status = $3)
			AND (NULLIF($4, '') IS NULL OR priority = $4)
		ORDER BY created_at DESC LIMIT $5 OFFSET $6`

	rows, err := r.pool.Query(ctx, query,
		filter.ProjectID, filter.AssigneeID, filter.Status, filter.Priority, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return scanTaskRows(rows)
}

func (r *TaskRepository) Update(ctx context.Context, id string, t *models.Task) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, due_date = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + taskColumns

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.DueDate, id,
	))
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountByStatus aggregates task counts per status, optionally scoped to a
// single assignee for non-privileged report views.
func (r *TaskRepository) CountByStatus(ctx context.Context, assigneeID string) ([]*models.TaskStatusCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM tasks
		WHERE (NULLIF($1, '') IS NULL OR assignee_id = $1::uuid)
		GROUP BY status
		ORDER BY status`

	rows, err := r.pool.Query(ctx, query, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task counts: %w", err)
	}
	defer rows.Close()

	counts := make([]*models.TaskStatusCount, 0)
	for rows.Next() {
		var c models.TaskStatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts = append(counts, &c)
	}
	return counts, rows.Err()
}
