package store

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// BlobConfig locates the S3-compatible bucket for generated files.
type BlobConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Region    string `json:"region" yaml:"region"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Blobs stores generated files under users/<id>/<filename>.
type Blobs struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger

	mu      sync.Mutex
	ensured bool
}

// NewBlobs creates a client. The bucket is created lazily on first write.
func NewBlobs(cfg BlobConfig, logger zerolog.Logger) (b *Blobs, err error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		err = errors.New("blob storage endpoint and bucket are required")
		return b, err
	}

	var client *minio.Client
	client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		err = errors.Wrap(err, "failed to create blob storage client")
		return b, err
	}

	b = &Blobs{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: logger}
	return b, err
}

// ObjectName returns the object key for a user's file.
func ObjectName(userID, filename string) string {
	return path.Join("users", userID, path.Base(strings.ReplaceAll(filename, "\\", "/")))
}

func (b *Blobs) ensureBucket(ctx context.Context) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ensured {
		return err
	}

	var exists bool
	exists, err = b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		err = errors.Wrapf(err, "failed to check bucket %s", b.bucket)
		return err
	}

	if !exists {
		err = b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region})
		if err != nil {
			err = errors.Wrapf(err, "failed to create bucket %s", b.bucket)
			return err
		}
		b.logger.Info().Str("bucket", b.bucket).Msg("Created bucket")
	}

	b.ensured = true
	return err
}

// Put uploads data and returns its object key.
func (b *Blobs) Put(ctx context.Context, userID, filename, contentType string, data []byte) (object string, err error) {
	err = b.ensureBucket(ctx)
	if err != nil {
		return object, err
	}

	object = ObjectName(userID, filename)
	_, err = b.client.PutObject(ctx, b.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		err = errors.Wrapf(err, "failed to upload %s", object)
	}
	return object, err
}

// Get downloads an object.
func (b *Blobs) Get(ctx context.Context, object string) (data []byte, err error) {
	var obj *minio.Object
	obj, err = b.client.GetObject(ctx, b.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch %s", object)
		return data, err
	}
	defer obj.Close()

	data, err = io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			err = errors.Wrapf(ErrNotFound, "object %s", object)
			return data, err
		}
		err = errors.Wrapf(err, "failed to read %s", object)
	}
	return data, err
}

// List returns the object keys stored for a user.
func (b *Blobs) List(ctx context.Context, userID string) (objects []string, err error) {
	prefix := path.Join("users", userID) + "/"
	for info := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			err = errors.Wrapf(info.Err, "failed to list %s", prefix)
			return objects, err
		}
		objects = append(objects, info.Key)
	}
	return objects, err
}

// Delete removes an object.
func (b *Blobs) Delete(ctx context.Context, object string) (err error) {
	err = b.client.RemoveObject(ctx, b.bucket, object, minio.RemoveObjectOptions{})
	if err != nil {
		err = errors.Wrapf(err, "failed to delete %s", object)
	}
	return err
}
