package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	mu          sync.Mutex
	objects     map[string]string
	contentType map[string]string
	err         error
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: map[string]string{}, contentType: map[string]string{}}
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	f.contentType[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_PutGetDelete(t *testing.T) {
	t.Parallel()

	api := newFakeObjectAPI()
	s := newS3Storage(api, "avatars-bucket")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.png", strings.NewReader("img"), "image/png"))
	assert.Equal(t, "img", api.objects["avatars-bucket/avatars/a.png"])
	assert.Equal(t, "image/png", api.contentType["avatars/a.png"])

	rc, err := s.Get(ctx, "a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "img", string(data))

	require.NoError(t, s.Delete(ctx, "a.png"))
	_, err = s.Get(ctx, "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Storage_WrapsErrors(t *testing.T) {
	t.Parallel()

	api := newFakeObjectAPI()
	api.err = errors.New("access denied")
	s := newS3Storage(api, "b")
	ctx := context.Background()

	err := s.Put(ctx, "a.png", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, api.err)

	_, err = s.Get(ctx, "a.png")
	assert.ErrorIs(t, err, api.err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "a.png"), api.err)
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNewS3Storage_StaticCredentials(t *testing.T) {
	t.Parallel()

	s, err := NewS3Storage(context.Background(), S3Options{
		Bucket:    "avatars",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "avatars", s.bucket)
	assert.NotNil(t, s.client)
}

// Swaps a package-level seam; not parallel.
func TestNewS3Storage_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}

	_, err := NewS3Storage(context.Background(), S3Options{Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load aws config")
}
