package database

import (
	"time"

	"github.com/cherry/cherry-cli/internal/project"
)

// projectModel is a workspace_projects row. Timestamps are Unix seconds so
// both dialects scan them the same way.
type projectModel struct {
	ID        int64
	Title     string
	ShortCode string
	CreatedAt int64
	UpdatedAt int64
}

func toProjectModel(p *project.WorkspaceProject) *projectModel {
	return &projectModel{
		ID:        p.ID,
		Title:     p.Title,
		ShortCode: p.ShortCode,
		CreatedAt: p.CreatedAt.Unix(),
		UpdatedAt: p.UpdatedAt.Unix(),
	}
}

func (m *projectModel) toDomain() *project.WorkspaceProject {
	return &project.WorkspaceProject{
		ID:        m.ID,
		Title:     m.Title,
		ShortCode: m.ShortCode,
		CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(m.UpdatedAt, 0).UTC(),
	}
}
