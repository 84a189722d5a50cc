package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Static errors for S3 operations.
var (
	// ErrObjectNotFound is returned when downloading a key that does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrDeleteIncomplete is returned when S3 reports per-key delete failures.
	ErrDeleteIncomplete = errors.New("storage: some objects were not deleted")
)

// maxDeleteBatch is the S3 DeleteObjects limit per request.
const maxDeleteBatch = 1000

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3ClientFunc returns the S3 client to use for a call.
// Implementations are expected to build the client once and reuse it.
type S3ClientFunc func(ctx context.Context) (S3API, error)

// S3Storage wraps LocalStorage and adds S3 list, download and delete.
// Downloads land in the LocalStorage output directory.
type S3Storage struct {
	*LocalStorage
	client S3ClientFunc
	bucket string
}

// NewS3Storage creates a new S3Storage instance.
// The outputDir parameter specifies where downloaded files are stored.
func NewS3Storage(outputDir, bucket string, client S3ClientFunc) (*S3Storage, error) {
	local, err := NewLocalStorage(outputDir)
	if err != nil {
		return nil, err
	}

	return &S3Storage{
		LocalStorage: local,
		client:       client,
		bucket:       bucket,
	}, nil
}

// Bucket returns the bucket name.
func (s *S3Storage) Bucket() string {
	return s.bucket
}

// ListObjects returns all objects under prefix, following pagination.
func (s *S3Storage) ListObjects(ctx context.Context, prefix string) ([]Object, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" {
				continue
			}
			objects = append(objects, Object{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// Download streams the object at key into the output directory as name.
func (s *S3Storage) Download(ctx context.Context, key, name string) (string, error) {
	if _, err := s.Path(name); err != nil {
		return "", err
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	path, err := s.Save(ctx, name, out.Body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	return path, nil
}

// DeleteObjects removes keys in batches of up to 1000.
// All batches are attempted; the first failure is returned.
func (s *S3Storage) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}

	var firstErr error
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: ids,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("delete objects: %w", err)
			}
			continue
		}
		if len(out.Errors) > 0 && firstErr == nil {
			e := out.Errors[0]
			firstErr = fmt.Errorf("%w: %s: %s", ErrDeleteIncomplete, aws.ToString(e.Key), aws.ToString(e.Code))
		}
	}
	return firstErr
}

// Compile-time check that S3Storage implements Storage.
var _ Storage = (*S3Storage)(nil)
