package artifact

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Store keeps report files under a run ID.
type Store interface {
	// Put uploads the file at path as <runID>/<base name of path> and returns its location.
	Put(ctx context.Context, runID, path string) (string, error)
}

// ObjectName is the key a report file is stored under.
func ObjectName(runID, path string) string {
	return runID + "/" + filepath.Base(path)
}

// LocalStore copies reports into a directory tree.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates a store rooted at dir. The directory is created on first Put.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, runID, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.Dir, filepath.FromSlash(ObjectName(runID, path)))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	logrus.Infof("Stored %s at %s", path, dst)
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating artifact copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying artifact: %w", err)
	}
	return out.Close()
}

// MinIOStore uploads reports to a MinIO (or any S3-compatible) bucket,
// creating the bucket if it does not exist.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to cfg.MinIOEndpoint. No request is made until Put.
func NewMinIOStore(cfg Config) (*MinIOStore, error) {
	endpoint := strings.TrimSpace(cfg.MinIOEndpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required when %s=minio", EnvBackend)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	bucket := strings.TrimSpace(cfg.MinIOBucket)
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &MinIOStore{client: client, bucket: bucket}, nil
}

// Bucket returns the target bucket name.
func (s *MinIOStore) Bucket() string {
	return s.bucket
}

// Put implements Store.
func (s *MinIOStore) Put(ctx context.Context, runID, path string) (string, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("creating bucket %s: %w", s.bucket, err)
		}
	}
	objectName := ObjectName(runID, path)
	_, err = s.client.FPutObject(ctx, s.bucket, objectName, path, minio.PutObjectOptions{ContentType: contentType(path)})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", objectName, err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.bucket, objectName)
	logrus.Infof("Uploaded %s to %s", path, location)
	return location, nil
}

func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
