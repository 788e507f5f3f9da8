package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	// GIVEN a report file and a local store
	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("scenario,parameter\n"), 0o644))
	root := t.TempDir()
	store := NewLocalStore(root)

	// WHEN stored under a run ID
	loc, err := store.Put(context.Background(), "run-1", src)
	require.NoError(t, err)

	// THEN it lands at <root>/<runID>/<file> with the same contents
	assert.Equal(t, filepath.Join(root, "run-1", "report.csv"), loc)
	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "scenario,parameter\n", string(data))
}

func TestLocalStore_MissingSource(t *testing.T) {
	_, err := NewLocalStore(t.TempDir()).Put(context.Background(), "run", filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestNewStore_SelectsBackend(t *testing.T) {
	s, err := NewStore(Config{Backend: BackendLocal, LocalDir: "out"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = NewStore(Config{Backend: BackendMinIO})
	assert.ErrorContains(t, err, "endpoint is required")

	m, err := NewStore(Config{Backend: BackendMinIO, MinIOEndpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBucket, m.(*MinIOStore).Bucket())

	_, err = NewStore(Config{Backend: "ftp"})
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvBackend, "MinIO")
	t.Setenv(EnvMinIOEndpoint, "minio:9000")
	t.Setenv(EnvMinIOUseSSL, "true")
	t.Setenv(EnvMinIOBucket, "")

	cfg := ConfigFromEnv()

	assert.Equal(t, BackendMinIO, cfg.Backend)
	assert.Equal(t, "minio:9000", cfg.MinIOEndpoint)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, DefaultBucket, cfg.MinIOBucket)
	assert.Equal(t, DefaultLocalDir, ConfigFromEnv().LocalDir)
}

func TestConfigFromEnv_UseSSLIsCaseInsensitive(t *testing.T) {
	for _, raw := range []string{"True", "TRUE", "yes", "1"} {
		// GIVEN a mixed-case truthy value
		t.Setenv(EnvMinIOUseSSL, raw)

		// THEN it enables SSL the same way the tracing flags parse booleans
		assert.True(t, ConfigFromEnv().MinIOUseSSL, raw)
	}
	t.Setenv(EnvMinIOUseSSL, "False")
	assert.False(t, ConfigFromEnv().MinIOUseSSL)
}

func TestObjectNameAndContentType(t *testing.T) {
	assert.Equal(t, "abc/report.json", ObjectName("abc", "/tmp/x/report.json"))
	assert.Equal(t, "text/csv", contentType("a.CSV"))
	assert.Equal(t, "application/json", contentType("a.json"))
	assert.Equal(t, "application/octet-stream", contentType("a.unknownext"))
}
