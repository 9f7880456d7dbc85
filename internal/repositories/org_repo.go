package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorse/taskdeck/internal/database"
	"github.com/calebmorse/taskdeck/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrgRepository handles departments and teams, the organizational containers
// above projects.
type OrgRepository struct {
	pool *pgxpool.Pool
}

func NewOrgRepository(db *database.DB) *OrgRepository {
	return &OrgRepository{pool: db.Pool}
}

// Departments

func (r *OrgRepository) CreateDepartment(ctx context.Context, d *models.Department) (*models.Department, error) {
	d.ID = uuid.New().String()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO departments (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, description, created_at, updated_at`

	var out models.Department
	err := r.pool.QueryRow(ctx, query, d.ID, d.Name, d.Description, d.CreatedAt, d.UpdatedAt).
		Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &out, nil
}

func (r *OrgRepository) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM departments WHERE id = $1`

	var d models.Department
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &d, nil
}

func (r *OrgRepository) ListDepartments(ctx context.Context, limit, offset int) ([]*models.Department, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM departments ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, &d)
	}
	return departments, rows.Err()
}

func (r *OrgRepository) UpdateDepartment(ctx context.Context, id string, d *models.Department) (*models.Department, error) {
	query := `
		UPDATE departments SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, created_at, updated_at`

	var out models.Department
	err := r.pool.QueryRow(ctx, query, d.Name, d.Description, id).
		Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &out, nil
}

func (r *OrgRepository) DeleteDepartment(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Teams

func (r *OrgRepository) CreateTeam(ctx context.Context, t *models.Team) (*models.Team, error) {
	t.ID = uuid.New().String()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO teams (id, department_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, department_id, name, description, created_at, updated_at`

	var out models.Team
	err := r.pool.QueryRow(ctx, query, t.ID, t.DepartmentID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt).
		Scan(&out.ID, &out.DepartmentID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &out, nil
}

func (r *OrgRepository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT id, department_id, name, description, created_at, updated_at FROM teams WHERE id = $1`

	var t models.Team
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&t.ID, &t.DepartmentID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &t, nil
}

// ListTeams returns teams, optionally filtered by department.
func (r *OrgRepository) ListTeams(ctx context.Context, departmentID string, limit, offset int) ([]*models.Team, error) {
	query := `
		SELECT id, department_id, name, description, created_at, updated_at
		FROM teams
		WHERE (NULLIF($1, '') IS NULL OR department_id = $1::uuid)
		ORDER BY name LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, departmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.DepartmentID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

func (r *OrgRepository) UpdateTeam(ctx context.Context, id string, t *models.Team) (*models.Team, error) {
	query := `
		UPDATE teams SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, department_id, name, description, created_at, updated_at`

	var out models.Team
	err := r.pool.QueryRow(ctx, query, t.Name, t.Description, id).
		Scan(&out.ID, &out.DepartmentID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &out, nil
}

func (r *OrgRepository) DeleteTeam(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
