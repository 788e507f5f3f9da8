// Package artifact uploads sweep reports to a local directory or a MinIO bucket.
package artifact

import (
	"fmt"
	"strings"

	"github.com/inference-sim/gridsim/sim/internal/envutil"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvBackend        = "GRIDSIM_ARTIFACT_BACKEND" // local | minio
	EnvLocalDir       = "GRIDSIM_ARTIFACT_DIR"
	EnvMinIOEndpoint  = "GRIDSIM_MINIO_ENDPOINT"
	EnvMinIOAccessKey = "GRIDSIM_MINIO_ACCESS_KEY"
	EnvMinIOSecretKey = "GRIDSIM_MINIO_SECRET_KEY"
	EnvMinIOBucket    = "GRIDSIM_MINIO_BUCKET"
	EnvMinIOUseSSL    = "GRIDSIM_MINIO_USE_SSL"
)

const (
	BackendLocal = "local"
	BackendMinIO = "minio"

	DefaultLocalDir = "artifacts"
	DefaultBucket   = "gridsim-reports"
)

// Config selects and parameterizes an artifact backend.
type Config struct {
	Backend        string
	LocalDir       string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

// ConfigFromEnv reads the artifact configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		Backend:        strings.ToLower(envutil.String(EnvBackend, BackendLocal)),
		LocalDir:       envutil.String(EnvLocalDir, DefaultLocalDir),
		MinIOEndpoint:  envutil.String(EnvMinIOEndpoint, ""),
		MinIOAccessKey: envutil.String(EnvMinIOAccessKey, ""),
		MinIOSecretKey: envutil.String(EnvMinIOSecretKey, ""),
		MinIOBucket:    envutil.String(EnvMinIOBucket, DefaultBucket),
		MinIOUseSSL:    envutil.Bool(EnvMinIOUseSSL, false),
	}
}

// NewStore builds the store named by cfg.Backend.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalStore(cfg.LocalDir), nil
	case BackendMinIO:
		return NewMinIOStore(cfg)
	default:
		return nil, fmt.Errorf("unknown %s %q (want local or minio)", EnvBackend, cfg.Backend)
	}
}

// NewStoreFromEnv is NewStore(ConfigFromEnv()).
func NewStoreFromEnv() (Store, error) {
	return NewStore(ConfigFromEnv())
}
