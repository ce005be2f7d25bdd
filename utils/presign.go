package utils

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/datacite/datafiles-service/config"
)

const presignTimeout = 10 * time.Second

// LinkIssuer hands out short-lived retrieval URLs for stored objects.
// It never returns an error: any backend failure is an absence, and the
// redemption handler decides what the user sees.
type LinkIssuer interface {
	IssueLink(ctx context.Context, objectKey string) (string, bool)
}

// S3LinkIssuer issues presigned GET URLs from an S3 compatible store.
type S3LinkIssuer struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewS3LinkIssuer builds a link issuer from the loaded configuration.
func NewS3LinkIssuer(cfg config.AppConfig) (*S3LinkIssuer, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, err
	}
	return &S3LinkIssuer{
		client: client,
		bucket: cfg.S3Bucket,
		expiry: time.Duration(cfg.LinkTTLMinutes) * time.Minute,
	}, nil
}

// IssueLink returns a presigned URL for the object key, or ok=false when
// the backend fails. Presigning is local signing in the minio client, but
// keep it bounded anyway.
func (s *S3LinkIssuer) IssueLink(ctx context.Context, objectKey string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, presignTimeout)
	defer cancel()

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, s.expiry, url.Values{})
	if err != nil {
		Sugar.Errorf("presign failed for object %q: %v", objectKey, err)
		return "", false
	}
	return u.String(), true
}
