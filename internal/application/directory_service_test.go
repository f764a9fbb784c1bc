package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
)

func TestDirectory_SetActive(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	dir := NewDirectoryService(f.repo, f.indexer, nil)

	p, err := dir.SetActive(context.Background(), "admin-1", reg.User.ID, false)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.False(t, f.indexer.docs[reg.User.ID].IsActive)

	_, err = f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Secr3t!"})
	assert.ErrorIs(t, err, apperror.ErrAccountDeactivated)

	p, err = dir.SetActive(context.Background(), "admin-1", reg.User.ID, true)
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	_, err = dir.SetActive(context.Background(), "admin-1", "missing", false)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDirectory_CannotDeactivateSelf(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, aliceInput())
	dir := NewDirectoryService(f.repo, nil, nil)

	_, err := dir.SetActive(context.Background(), reg.User.ID, reg.User.ID, false)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDirectory_Search(t *testing.T) {
	f := newFixture(t)
	f.register(t, aliceInput())

	dir := NewDirectoryService(f.repo, f.indexer, nil)
	hits, err := dir.SearchMembers(context.Background(), " alice ", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a@x.com", hits[0].Email)

	_, err = dir.SearchMembers(context.Background(), "  ", 10)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewDirectoryService(f.repo, nil, nil).SearchMembers(context.Background(), "alice", 10)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}
