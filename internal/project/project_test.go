package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	byCode  map[string]*WorkspaceProject
	lookups int
	saves   int
}

func (r *countingRepo) FindByTitle(_ context.Context, title string) (*WorkspaceProject, error) {
	r.lookups++
	for _, p := range r.byCode {
		if p.Title == title {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *countingRepo) FindByShortCode(_ context.Context, code string) (*WorkspaceProject, error) {
	r.lookups++
	if p, ok := r.byCode[code]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *countingRepo) FindByID(context.Context, int64) (*WorkspaceProject, error) { return nil, nil }
func (r *countingRepo) FindAll(context.Context) ([]*WorkspaceProject, error)       { return nil, nil }

func (r *countingRepo) Save(_ context.Context, p *WorkspaceProject) error {
	r.saves++
	r.byCode[p.ShortCode] = p
	return nil
}

func (r *countingRepo) DeleteByID(_ context.Context, id int64) error {
	for code, p := range r.byCode {
		if p.ID == id {
			delete(r.byCode, code)
		}
	}
	return nil
}

func TestValidate(t *testing.T) {
	require.NoError(t, New("Web shop", " chr ").Validate())
	assert.Equal(t, "CHR", New("x", " chr ").ShortCode)

	assert.Error(t, New("", "CHR").Validate())
	assert.Error(t, New("x", "C").Validate())
	assert.Error(t, New("x", "1AB").Validate())
	assert.Error(t, New("x", "AB-1").Validate())
	assert.Error(t, New("x", "ABCDEFGHIJK").Validate())
}

func TestView(t *testing.T) {
	p := &WorkspaceProject{ID: 4, Title: "Web", ShortCode: "WEB"}
	v := p.View()
	assert.Equal(t, int64(4), v.ProjectID)
	assert.Equal(t, "WEB", v.ProjectShortCode)
	assert.Equal(t, "Web", v.Title)
}

func TestCachedRepository_CachesHitsOnly(t *testing.T) {
	inner := &countingRepo{byCode: map[string]*WorkspaceProject{
		"WEB": {ID: 1, Title: "Web", ShortCode: "WEB"},
	}}
	repo := NewCachedRepository(inner, time.Minute)
	ctx := context.Background()

	p, err := repo.FindByShortCode(ctx, "WEB")
	require.NoError(t, err)
	require.NotNil(t, p)
	p.Title = "mutated"

	again, err := repo.FindByShortCode(ctx, "WEB")
	require.NoError(t, err)
	assert.Equal(t, "Web", again.Title, "cached entry must not be shared with callers")
	assert.Equal(t, 1, inner.lookups)

	missing, err := repo.FindByShortCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
	_, _ = repo.FindByShortCode(ctx, "NOPE")
	assert.Equal(t, 3, inner.lookups, "misses are not cached")

	byTitle, err := repo.FindByTitle(ctx, "Web")
	require.NoError(t, err)
	require.NotNil(t, byTitle)
	_, _ = repo.FindByTitle(ctx, "Web")
	assert.Equal(t, 4, inner.lookups)
}

func TestCachedRepository_WritesInvalidate(t *testing.T) {
	inner := &countingRepo{byCode: map[string]*WorkspaceProject{
		"WEB": {ID: 1, Title: "Web", ShortCode: "WEB"},
	}}
	repo := NewCachedRepository(inner, 0)
	ctx := context.Background()

	_, _ = repo.FindByShortCode(ctx, "WEB")
	require.NoError(t, repo.Save(ctx, &WorkspaceProject{ID: 1, Title: "Web 2", ShortCode: "WEB"}))

	p, err := repo.FindByShortCode(ctx, "WEB")
	require.NoError(t, err)
	assert.Equal(t, "Web 2", p.Title)

	require.NoError(t, repo.DeleteByID(ctx, 1))
	p, err = repo.FindByShortCode(ctx, "WEB")
	require.NoError(t, err)
	assert.Nil(t, p)
}
