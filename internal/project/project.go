// Package project defines workspace projects and the repository contract
// used to persist and look them up.
package project

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cherry/cherry-cli/internal/testrun"
)

// ErrShortCodeTaken is returned by Save when another project already uses the
// short code. Uniqueness is enforced by the store, not in memory.
var ErrShortCodeTaken = errors.New("project short code already in use")

var shortCodeRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

type WorkspaceProject struct {
	ID        int64     `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	ShortCode string    `json:"shortCode" yaml:"shortCode"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// New returns an unsaved project with normalized fields.
func New(title, shortCode string) *WorkspaceProject {
	now := time.Now().UTC()
	return &WorkspaceProject{
		Title:     strings.TrimSpace(title),
		ShortCode: NormalizeShortCode(shortCode),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NormalizeShortCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (p *WorkspaceProject) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("project title is required")
	}
	if !shortCodeRe.MatchString(p.ShortCode) {
		return fmt.Errorf("invalid project short code %q (expected 2-10 uppercase letters or digits, starting with a letter)", p.ShortCode)
	}
	return nil
}

// View converts the stored project to the projection the test run views use.
func (p *WorkspaceProject) View() testrun.Project {
	return testrun.Project{ProjectID: p.ID, Title: p.Title, ProjectShortCode: p.ShortCode}
}

// Repository persists workspace projects. The keyed lookups return nil, nil
// when nothing matches; absence is not an error.
type Repository interface {
	FindByTitle(ctx context.Context, title string) (*WorkspaceProject, error)
	FindByShortCode(ctx context.Context, shortCode string) (*WorkspaceProject, error)

	FindByID(ctx context.Context, id int64) (*WorkspaceProject, error)
	FindAll(ctx context.Context) ([]*WorkspaceProject, error)
	// Save inserts when ID is zero and assigns the new ID, otherwise updates.
	Save(ctx context.Context, p *WorkspaceProject) error
	DeleteByID(ctx context.Context, id int64) error
}
