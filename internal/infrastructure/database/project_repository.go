package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/cherry/cherry-cli/internal/project"
)

const projectColumns = `id, title, project_short_code, created_at, updated_at`

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// projectRepository implements project.Repository over database/sql. Queries
// use "?" placeholders, which both drivers accept.
type projectRepository struct {
	db     *sql.DB
	driver string
}

func newProjectRepository(db *sql.DB, driver string) *projectRepository {
	return &projectRepository{db: db, driver: driver}
}

var _ project.Repository = (*projectRepository)(nil)

func scanProject(scanner interface{ Scan(...any) error }) (*projectModel, error) {
	var m projectModel
	err := scanner.Scan(&m.ID, &m.Title, &m.ShortCode, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *projectRepository) findOne(ctx context.Context, where string, arg any) (*project.WorkspaceProject, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM workspace_projects WHERE `+where, arg)
	m, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// FindByTitle returns the project whose title equals title exactly, or nil.
func (r *projectRepository) FindByTitle(ctx context.Context, title string) (*project.WorkspaceProject, error) {
	p, err := r.findOne(ctx, `title = ? ORDER BY id LIMIT 1`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to find project by title: %w", err)
	}
	return p, nil
}

// FindByShortCode returns the project with the given short code, or nil.
func (r *projectRepository) FindByShortCode(ctx context.Context, shortCode string) (*project.WorkspaceProject, error) {
	p, err := r.findOne(ctx, `project_short_code = ?`, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to find project by short code: %w", err)
	}
	return p, nil
}

func (r *projectRepository) FindByID(ctx context.Context, id int64) (*project.WorkspaceProject, error) {
	p, err := r.findOne(ctx, `id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find project by id: %w", err)
	}
	return p, nil
}

func (r *projectRepository) FindAll(ctx context.Context) ([]*project.WorkspaceProject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM workspace_projects ORDER BY project_short_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []*project.WorkspaceProject{}
	for rows.Next() {
		m, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// Save inserts a new project (ID == 0) and assigns its ID, or updates an
// existing one. A short code collision yields project.ErrShortCodeTaken.
func (r *projectRepository) Save(ctx context.Context, p *project.WorkspaceProject) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m := toProjectModel(p)

	if p.ID == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO workspace_projects (title, project_short_code, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			m.Title, m.ShortCode, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return r.writeError("insert", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		p.ID = id
		return nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE workspace_projects SET title = ?, project_short_code = ?, updated_at = ? WHERE id = ?`,
		m.Title, m.ShortCode, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return r.writeError("update", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// MySQL reports 0 for unchanged rows; only treat a missing id as an error.
		existing, ferr := r.FindByID(ctx, p.ID)
		if ferr != nil {
			return ferr
		}
		if existing == nil {
			return fmt.Errorf("project %d not found", p.ID)
		}
	}
	return nil
}

// DeleteByID removes the project. Deleting a missing id is not an error.
func (r *projectRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workspace_projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (r *projectRepository) writeError(op string, err error) error {
	if isUniqueViolation(err) {
		return project.ErrShortCodeTaken
	}
	return fmt.Errorf("failed to %s project: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
