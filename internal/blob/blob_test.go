package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskPut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDisk(dir)
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ref, err := store.Put(context.Background(), "photo.png", strings.NewReader("pngdata"), 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/1700000000000-"), ref)
	assert.True(t, strings.HasSuffix(ref, "-photo.png"), ref)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "pngdata", string(data))
}

func TestDiskPutShortWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDisk(dir)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "clip.mp4", strings.NewReader("abc"), 10)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Put(t *testing.T) {
	putter := &fakePutter{}
	store := &S3{Client: putter, Bucket: "chat", Prefix: "uploads", now: func() time.Time { return time.UnixMilli(42) }}

	ref, err := store.Put(context.Background(), "report.xlsx", strings.NewReader("cells"), 5)
	require.NoError(t, err)

	assert.Equal(t, "chat", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "uploads"+strings.TrimPrefix(ref, "/uploads"), aws.ToString(putter.input.Key))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, "cells", putter.body)
	assert.True(t, strings.HasPrefix(ref, "/uploads/42-"))
}

func TestS3PutError(t *testing.T) {
	store := &S3{Client: &fakePutter{err: errors.New("access denied")}, Bucket: "chat"}

	_, err := store.Put(context.Background(), "a.txt", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "access denied")
}
