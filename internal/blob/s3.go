package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"charla/server/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the store uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores blobs as objects in a bucket. Object keys mirror the public
// reference path so the bucket can be fronted by a CDN at /uploads.
type S3 struct {
	Client ObjectPutter
	Bucket string
	Prefix string
	now    func() time.Time
}

// NewS3 builds a client from the default AWS credential chain.
func NewS3(ctx context.Context, bucket, prefix string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &S3{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix, now: time.Now}, nil
}

// Put uploads the content as <Prefix>/<time-prefixed name>.
func (s *S3) Put(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	name := utils.GenerateBlobName(filename, now())
	key := path.Join(s.Prefix, name)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType(utils.Extension(filename))),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return publicRef(name), nil
}
