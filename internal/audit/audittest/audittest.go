// Package audittest holds the compliance suite shared by audit.Store adapters.
package audittest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxwise/taxwise-server/internal/audit"
	"github.com/taxwise/taxwise-server/internal/model"
)

// Run exercises a minimal compliance suite against an audit.Store implementation.
// makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) audit.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	first, err := s.Append(ctx, &model.AuditEntry{
		UserID:   "user-1",
		UserName: "Ada",
		Action:   model.ActionLoginSuccess,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.Equal(t, model.ActionLoginSuccess, first.Action)

	system, err := s.Append(ctx, &model.AuditEntry{Action: model.ActionAllDataCleared, Details: "reset"})
	require.NoError(t, err)
	assert.Equal(t, model.SystemUserID, system.UserID)
	assert.Equal(t, model.SystemUserName, system.UserName)

	last, err := s.Append(ctx, &model.AuditEntry{
		UserID:   "user-1",
		UserName: "Ada",
		Action:   model.ActionDocumentExported,
		Details:  "Success. Category: medical, Filename: f.zip",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, last.ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{last.ID, system.ID, first.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Success. Category: medical, Filename: f.zip", all[0].Details)
	assert.Equal(t, model.ActionDocumentExported, all[0].Action)
	assert.Equal(t, "Ada", all[0].UserName)
	assert.False(t, all[0].Timestamp.Before(all[2].Timestamp))

	top, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, last.ID, top[0].ID)

	capped, err := s.List(ctx, audit.MaxListLimit+1000)
	require.NoError(t, err)
	assert.Len(t, capped, 3)
}
