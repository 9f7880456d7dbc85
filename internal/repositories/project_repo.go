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

const projectColumns = `id, team_id, manager_id, name, description, status, due_date, created_at, updated_at`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{pool: db.Pool}
}

func scanProjectRow(scanner rowScanner) (*models.Project, error) {
	var p models.Project
	var dueDate *time.Time

	err := scanner.Scan(
		&p.ID, &p.TeamID, &p.ManagerID, &p.Name, &p.Description,
		&p.Status, &dueDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	p.DueDate = dueDate
	return &p, nil
}

func scanProjectRows(rows pgx.Rows) ([]*models.Project, error) {
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = uuid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}

	query := `
		INSERT INTO projects (id, team_id, manager_id, name, description, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + projectColumns

	return scanProjectRow(r.pool.QueryRow(ctx, query,
		p.ID, p.TeamID, p.ManagerID, p.Name, p.Description, p.Status, p.DueDate, p.CreatedAt, p.UpdatedAt,
	))
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProjectRow(r.pool.QueryRow(ctx, query, id))
}

// List returns projects, optionally filtered by team and/or status.
func (r *ProjectRepository) List(ctx context.Context, teamID, status string, limit, offset int) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE (NULLIF($1, '') IS NULL OR team_id = $1::uuid) AND (NULLIF($2, '') IS NULL OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, teamID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	return scanProjectRows(rows)
}

func (r *ProjectRepository) Update(ctx context.Context, id string, p *models.Project) (*models.Project, error) {
	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, manager_id = $4, due_date = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + projectColumns

	return scanProjectRow(r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Status, p.ManagerID, p.DueDate, id,
	))
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
