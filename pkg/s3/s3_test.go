package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"unievent/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.StringValue(in.Key)] = data
	f.types[aws.StringValue(in.Key)] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	api := newFakeS3()
	client := NewWithAPI(api, "avatars", "http://localhost:9000/avatars/")

	url, err := client.UploadFile(context.Background(), "avatars/u1/a.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/avatars/avatars/u1/a.png", url)
	assert.Equal(t, []byte("png-bytes"), api.objects["avatars/u1/a.png"])
	assert.Equal(t, "image/png", api.types["avatars/u1/a.png"])

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "avatars/u1/a.png", key)

	require.NoError(t, client.DeleteFile(context.Background(), key))
	assert.Empty(t, api.objects)
}

func TestUploadFile_TooLarge(t *testing.T) {
	client := NewWithAPI(newFakeS3(), "b", "http://x/b")

	_, err := client.UploadFile(context.Background(), "k", bytes.NewReader(make([]byte, MaxObjectSize+1)), "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadFile_PutFails(t *testing.T) {
	api := newFakeS3()
	api.putErr = errors.New("access denied")
	client := NewWithAPI(api, "b", "http://x/b")

	_, err := client.UploadFile(context.Background(), "k", strings.NewReader("x"), "image/png")
	assert.Error(t, err)
}

func TestKeyFromURL_ForeignURL(t *testing.T) {
	client := NewWithAPI(newFakeS3(), "b", "http://x/b")

	_, ok := client.KeyFromURL("https://cdn.example.com/a.png")
	assert.False(t, ok)
}

func TestDeleteURL(t *testing.T) {
	api := newFakeS3()
	client := NewWithAPI(api, "b", "http://x/b")

	url, err := client.UploadFile(context.Background(), "avatars/u1/a.png", strings.NewReader("x"), "image/png")
	require.NoError(t, err)
	_, err = client.UploadFile(context.Background(), "avatars/u1/b.png", strings.NewReader("y"), "image/png")
	require.NoError(t, err)

	require.NoError(t, client.DeleteURL(context.Background(), "https://cdn.example.com/avatars/u1/b.png"))
	assert.Len(t, api.objects, 2)

	require.NoError(t, client.DeleteURL(context.Background(), url))
	assert.Len(t, api.objects, 1)
	assert.Contains(t, api.objects, "avatars/u1/b.png")
}

func TestObjectBaseURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/media", objectBaseURL(&config.Config{
		AWSEndpoint: "http://minio:9000", S3BucketName: "media", S3UseSSL: "false",
	}))
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", objectBaseURL(&config.Config{
		AWSRegion: "eu-west-1", S3BucketName: "media",
	}))
}
