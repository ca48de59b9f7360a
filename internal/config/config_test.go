package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults_DriversByBuildTarget(t *testing.T) {
	tests := []struct {
		target      string
		wantAudit   string
		wantObjects string
	}{
		{"local", "sqlite", "dir"},
		{"cloud-dev", "postgres", "http"},
		{"cloud", "postgres", "http"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			cfg := NewForTesting()
			cfg.BuildTarget = tt.target
			require.NoError(t, cfg.ResolveDefaults())
			assert.Equal(t, tt.wantAudit, cfg.AuditDriver)
			assert.Equal(t, tt.wantObjects, cfg.ObjectStoreDriver)
		})
	}
}

func TestResolveDefaults_SQLitePathDerived(t *testing.T) {
	cfg := NewForTesting()
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "./data/audit.db", cfg.SQLitePath)
}

func TestResolveDefaults_ExplicitDriverKept(t *testing.T) {
	cfg := NewForTesting()
	cfg.BuildTarget = "cloud"
	cfg.AuditDriver = "sqlite"
	cfg.ObjectStoreDriver = "dir"
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.AuditDriver)
	assert.Equal(t, "dir", cfg.ObjectStoreDriver)
}

func TestResolveDefaults_Rejects(t *testing.T) {
	cfg := NewForTesting()
	cfg.BuildTarget = "mainframe"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.AuditDriver = "spanner"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.ObjectStoreDriver = "ftp"
	assert.Error(t, cfg.ResolveDefaults())

	cfg = NewForTesting()
	cfg.FetchConcurrency = 0
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("TAXWISE_BUILD_TARGET", "local")
	t.Setenv("TAXWISE_HTTP_PORT", "9191")
	t.Setenv("TAXWISE_FETCH_CONCURRENCY", "8")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, "sqlite", cfg.AuditDriver)
	assert.Equal(t, "taxwise", cfg.ExportPrefix)
	assert.Equal(t, ":9191", cfg.GetHTTPAddr())
}

func TestLoad_BuildTargetOverrideDrivesDefaults(t *testing.T) {
	t.Setenv("TAXWISE_BUILD_TARGET", "cloud")

	cfg, err := Load("local")
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.BuildTarget)
	assert.Equal(t, "sqlite", cfg.AuditDriver)
	assert.Equal(t, "dir", cfg.ObjectStoreDriver)
}
