package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"foodgram/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveDeleteURL(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "https://foodgram.example/media")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "recipes/a.jpg", []byte("img"), "image/jpeg"))
	data, err := os.ReadFile(filepath.Join(dir, "recipes", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	assert.Equal(t, "https://foodgram.example/media/recipes/a.jpg", store.URL("recipes/a.jpg"))
	assert.Equal(t, "", store.URL(""))

	require.NoError(t, store.Delete(ctx, "recipes/a.jpg"))
	_, err = os.Stat(filepath.Join(dir, "recipes", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, "recipes/a.jpg"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media")
	for _, key := range []string{"", "../etc/passwd", "recipes/../../x", "a//b"} {
		err := store.Save(context.Background(), key, []byte("x"), "image/png")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestNew_LocalDefault(t *testing.T) {
	store, err := New(context.Background(), &config.Config{MediaDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "/media/avatars/x.png", store.URL("avatars/x.png"))

	_, err = New(context.Background(), &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_SaveDelete(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, S3Options{Bucket: "media", Region: "eu-west-1"})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "recipes/b.webp", []byte("webp"), "image/webp"))
	assert.Equal(t, []byte("webp"), fake.objects["media/recipes/b.webp"])
	assert.Equal(t, "image/webp", fake.types["media/recipes/b.webp"])
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/recipes/b.webp", store.URL("recipes/b.webp"))

	require.NoError(t, store.Delete(ctx, "recipes/b.webp"))
	assert.Empty(t, fake.objects)
}

func TestS3Store_PublicURLVariants(t *testing.T) {
	custom := newS3Store(newFakeS3(), S3Options{Bucket: "media", PublicURL: "https://cdn.example/"})
	assert.Equal(t, "https://cdn.example/a.png", custom.URL("a.png"))

	minio := newS3Store(newFakeS3(), S3Options{Bucket: "media", Endpoint: "http://localhost:9000"})
	assert.Equal(t, "http://localhost:9000/media/a.png", minio.URL("a.png"))
}

func TestS3Store_SaveError(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = true
	store := newS3Store(fake, S3Options{Bucket: "media"})
	assert.Error(t, store.Save(context.Background(), "a.png", []byte("x"), "image/png"))
}
