package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeService(t *testing.T, success bool) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/export-package":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			if got["category"] == "crypto" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"success":false,"message":"Server error: unsupported category"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(exportResult{
				Success:     success,
				Message:     "Package for category 'medical' generated successfully.",
				DownloadURL: zipDataURLPrefix + base64.StdEncoding.EncodeToString([]byte("PK-fake")),
				Filename:    "taxwise_export_medical_u1_1.zip",
			})
		case "/api/admin/audit-logs":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"count":1,"logs":[{"timestamp":"2024-05-01T10:00:00Z","userId":"u1","userName":"Ada","action":"Document Exported","details":"Success. Category: medical"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExportCmd_WritesArchive(t *testing.T) {
	srv, got := newFakeService(t, true)
	dir := t.TempDir()

	out, err := execute(t, "--service-url", srv.URL, "export", "-u", "u1", "-c", "medical",
		"--doc", "w2.pdf=https://storage.example/w2.pdf?X-Sig=a=b", "-o", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "generated successfully")
	data, err := os.ReadFile(filepath.Join(dir, "taxwise_export_medical_u1_1.zip"))
	require.NoError(t, err)
	assert.Equal(t, "PK-fake", string(data))

	docs := (*got)["userDocuments"].([]interface{})
	require.Len(t, docs, 1)
	assert.Equal(t, "https://storage.example/w2.pdf?X-Sig=a=b", docs[0].(map[string]interface{})["signedUrl"])
}

func TestExportCmd_FailsOnIssuesButKeepsArchive(t *testing.T) {
	srv, _ := newFakeService(t, false)
	dir := t.TempDir()

	_, err := execute(t, "--service-url", srv.URL, "export", "-u", "u1", "-c", "medical", "-o", dir)
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "taxwise_export_medical_u1_1.zip"))
}

func TestExportCmd_ServerError(t *testing.T) {
	srv, _ := newFakeService(t, true)

	_, err := execute(t, "--service-url", srv.URL, "export", "-u", "u1", "-c", "crypto", "-o", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Server error: unsupported category")
}

func TestExportCmd_RejectsBadDoc(t *testing.T) {
	_, err := execute(t, "export", "-u", "u1", "--doc", "no-url")
	assert.ErrorContains(t, err, "must be filename=url")
}

func TestAuditCmd(t *testing.T) {
	srv, _ := newFakeService(t, true)

	out, err := execute(t, "--service-url", srv.URL, "audit", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada (u1)")
	assert.Contains(t, out, "Document Exported")
}
