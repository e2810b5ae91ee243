package admission

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/apperr"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "admissions.json")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	return s, path
}

func sampleRecord(id, email string) Record {
	return Record{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Programme: "IT",
		Intake:    "2025-02",
		Status:    StatusPending,
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:    SourceVoiceIntake,
	}
}

func TestNewFileStoreInitialisesEmptyArray(t *testing.T) {
	_, path := newTestFileStore(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileStoreAppendPreservesOrder(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	for _, id := range []string{"adm_1", "adm_2", "adm_3"} {
		_, err := s.Append(ctx, sampleRecord(id, id+"@example.com"))
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "adm_1", all[0].ID)
	assert.Equal(t, "adm_3", all[2].ID)
	assert.Nil(t, all[0].ApprovedBy)
	assert.True(t, all[0].CreatedAt.Equal(sampleRecord("", "").CreatedAt))
}

func TestFileStoreKeepsWorldReadableMode(t *testing.T) {
	s, path := newTestFileStore(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	_, err = s.Append(context.Background(), sampleRecord("adm_1", "a@b.com"))
	require.NoError(t, err)
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileStoreFindByIDAndField(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	_, _ = s.Append(ctx, sampleRecord("adm_1", "a@b.com"))
	_, _ = s.Append(ctx, sampleRecord("adm_2", "c@d.com"))
	_, _ = s.Append(ctx, sampleRecord("adm_3", "a@b.com"))

	got, ok, err := s.FindByID(ctx, "adm_2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c@d.com", got.Email)

	_, ok, err = s.FindByID(ctx, "adm_missing")
	require.NoError(t, err)
	assert.False(t, ok)

	matches, err := s.FindAllByField(ctx, FieldEmail, "a@b.com")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "adm_1", matches[0].ID)
	assert.Equal(t, "adm_3", matches[1].ID)

	none, err := s.FindAllByField(ctx, Field("nope"), "a@b.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileStoreUpdateMergesShallowly(t *testing.T) {
	s, _ := newTestFileStore(t)
	ctx := context.Background()
	rec := sampleRecord("adm_1", "a@b.com")
	rec.Notes = "prefers mornings"
	_, _ = s.Append(ctx, rec)

	status := StatusApproved
	by := "admin@example.com"
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, ok, err := s.UpdateByID(ctx, "adm_1", Patch{Status: &status, ApprovedBy: &by, ApprovedAt: &at})
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, StatusApproved, updated.Status)
	assert.Equal(t, "prefers mornings", updated.Notes)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, by, *updated.ApprovedBy)

	reloaded, _, _ := s.FindByID(ctx, "adm_1")
	assert.Equal(t, StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ApprovedAt)
	assert.True(t, at.Equal(*reloaded.ApprovedAt))
}

func TestFileStoreUpdateMissingDoesNotWrite(t *testing.T) {
	s, path := newTestFileStore(t)
	ctx := context.Background()
	_, _ = s.Append(ctx, sampleRecord("adm_1", "a@b.com"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	status := StatusApproved
	_, ok, err := s.UpdateByID(ctx, "adm_missing", Patch{Status: &status})
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileStoreUnparsableFileReadsEmpty(t *testing.T) {
	s, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	_, ok, err := s.FindByID(context.Background(), "adm_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreMissingFileReadsEmpty(t *testing.T) {
	s, path := newTestFileStore(t)
	require.NoError(t, os.Remove(path))

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileStoreWriteFailureIsIOError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	s, path := newTestFileStore(t)
	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := s.Append(context.Background(), sampleRecord("adm_1", "a@b.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrIO)
	assert.Contains(t, err.Error(), "filestore.append")
}
