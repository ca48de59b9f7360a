package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/audit/audittest"
	"github.com/taxwise/taxwise-server/internal/model"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DB().Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	audittest.Run(t, func(t *testing.T) audit.Store { return newMemoryStore(t) })
}

func TestSQLiteStore_OrdersByTimestampNotInsertion(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	times := []time.Time{base.Add(time.Second), base, base.Add(100 * time.Millisecond)}
	var ids []string
	for _, ts := range times {
		s.now = func() time.Time { return ts }
		e, err := s.Append(ctx, &model.AuditEntry{Action: model.ActionSettingsSaved})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[2].Timestamp.Equal(base))
}

func TestSQLiteStore_FileBackedSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "audit.db")

	s, err := New(ctx, path)
	require.NoError(t, err)
	_, err = s.Append(ctx, &model.AuditEntry{UserID: "u", UserName: "U", Action: model.ActionDocumentUploaded})
	require.NoError(t, err)
	require.NoError(t, s.HealthPing(ctx))
	require.NoError(t, s.DB().Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DB().Close() })
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ActionDocumentUploaded, got[0].Action)
}
