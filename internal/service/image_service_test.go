package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageService_SaveDataURI(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := NewImageService(store, &config.Config{ImageMaxUploadSizeMB: 1})

	key, err := svc.SaveDataURI(context.Background(), ImageKindAvatar, testutil.PNGDataURI(t, 10, 10))
	require.NoError(t, err)
	assert.Regexp(t, `^avatars/[0-9a-f-]{36}\.png$`, key)
	assert.Equal(t, "http://media.test/"+key, svc.URL(key))

	data, contentType, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, testutil.TinyPNG(t, 10, 10), data, "small images are stored untouched")
}

func TestImageService_DownscalesLargeImages(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := NewImageService(store, nil)

	key, err := svc.SaveDataURI(context.Background(), ImageKindRecipe, testutil.PNGDataURI(t, 4096, 800))
	require.NoError(t, err)

	data, _, ok := store.Get(key)
	require.True(t, ok)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, MasterMaxSize, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestImageService_Rejects(t *testing.T) {
	pngB64 := base64.StdEncoding.EncodeToString(testutil.TinyPNG(t, 4, 4))

	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"not a data uri", "hello"},
		{"missing base64 marker", "data:image/png," + pngB64},
		{"bad base64", "data:image/png;base64,@@@"},
		{"text payload", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))},
		{"unsupported declared type", "data:image/svg+xml;base64," + pngB64},
		{"declared type mismatch", "data:image/jpeg;base64," + pngB64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMemoryStore()
			svc := NewImageService(store, nil)
			_, err := svc.SaveDataURI(context.Background(), ImageKindRecipe, tt.payload)
			appErr := assertCode(t, err, models.CodeValidation)
			assert.Contains(t, appErr.Fields, "image")
			assert.Zero(t, store.Len())
		})
	}
}

func TestImageService_SizeBound(t *testing.T) {
	svc := NewImageService(testutil.NewMemoryStore(), nil)
	svc.maxUploadSizeBytes = 16

	_, err := svc.SaveDataURI(context.Background(), ImageKindAvatar, testutil.PNGDataURI(t, 4, 4))
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "avatar")
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without touching its
// pixel data, so the header claims far more pixels than the payload carries.
func withDeclaredSize(t *testing.T, png []byte, width, height uint32) []byte {
	t.Helper()
	require.Greater(t, len(png), 33)
	require.Equal(t, "IHDR", string(png[12:16]))

	out := append([]byte(nil), png...)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestImageService_RejectsOversizedDimensions(t *testing.T) {
	raw := withDeclaredSize(t, testutil.TinyPNG(t, 4, 4), 12000, 12000)
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	store := testutil.NewMemoryStore()
	svc := NewImageService(store, nil)

	_, err := svc.SaveDataURI(context.Background(), ImageKindRecipe, payload)
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "image")
	assert.Zero(t, store.Len())
}

func TestImageService_AcceptsImagesUnderPixelCap(t *testing.T) {
	svc := NewImageService(testutil.NewMemoryStore(), nil)

	_, err := svc.SaveDataURI(context.Background(), ImageKindAvatar, testutil.PNGDataURI(t, 3000, 2000))
	require.NoError(t, err)
}
