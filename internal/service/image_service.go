package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 80
	// MaxImagePixels caps width*height before a payload is fully decoded.
	MaxImagePixels = 40_000_000
)

// ImageKind selects the key prefix and the request field an image belongs to.
type ImageKind string

const (
	ImageKindRecipe ImageKind = "recipes"
	ImageKindAvatar ImageKind = "avatars"
)

func (k ImageKind) field() string {
	if k == ImageKindAvatar {
		return "avatar"
	}
	return "image"
}

// ImageService turns data-URI payloads into stored blobs.
type ImageService struct {
	store              storage.BlobStore
	maxUploadSizeBytes int64
}

func NewImageService(store storage.BlobStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// SaveDataURI decodes a `data:image/<type>;base64,<data>` payload, downscales
// it to MasterMaxSize on its longest side if needed, and stores it as
// "<kind>/<uuid>.<ext>". It returns the storage key.
func (s *ImageService) SaveDataURI(ctx context.Context, kind ImageKind, payload string) (string, error) {
	field := kind.field()

	declared, raw, err := decodeDataURI(payload)
	if err != nil {
		return "", models.NewFieldValidationError(field, err.Error())
	}
	if int64(len(raw)) > s.maxUploadSizeBytes {
		return "", models.NewFieldValidationError(field, fmt.Sprintf("File too large (max %dMB).", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(raw)
	if !isAllowedImageMIME(detected) {
		return "", models.NewFieldValidationError(field, "Upload a valid image. Supported types are jpeg, png, webp and gif.")
	}

	dims, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewFieldValidationError(field, "Upload a valid image. The file is corrupted or not an image.")
	}
	if dims.Width <= 0 || dims.Height <= 0 || int64(dims.Width)*int64(dims.Height) > MaxImagePixels {
		return "", models.NewFieldValidationError(field, fmt.Sprintf("Image dimensions too large (max %d pixels).", MaxImagePixels))
	}

	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", models.NewFieldValidationError(field, "Upload a valid image. The file is corrupted or not an image.")
	}
	contentType := decodedFormatToMime(format)
	if contentType == "" {
		return "", models.NewFieldValidationError(field, "Unsupported image format.")
	}
	if declared != "" && !isMatchingContentType(declared, contentType) {
		return "", models.NewFieldValidationError(field, "Image content type mismatch.")
	}

	data := raw
	b := decoded.Bounds()
	if b.Dx() > MasterMaxSize || b.Dy() > MasterMaxSize {
		data, contentType, err = encodeAs(resizeToFit(decoded, MasterMaxSize, MasterMaxSize), contentType)
		if err != nil {
			return "", models.NewInternalError(err)
		}
	}

	key := fmt.Sprintf("%s/%s.%s", kind, uuid.NewString(), extensionFor(contentType))
	if err := s.store.Save(ctx, key, data, contentType); err != nil {
		return "", models.NewInternalError(err)
	}
	observability.ImageUploads.WithLabelValues(string(kind)).Inc()
	return key, nil
}

// Delete removes a stored image. Failures are logged, never returned: a stale
// blob must not fail the request that replaced it.
func (s *ImageService) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete stored image",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// URL maps a storage key to its public URL.
func (s *ImageService) URL(key string) string {
	return s.store.URL(key)
}

func decodeDataURI(payload string) (string, []byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", nil, errors.New("No file was submitted.")
	}
	header, body, ok := strings.Cut(payload, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.New("Image must be a base64 data URI.")
	}
	declared := normalizeContentType(strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"))
	if declared != "" && !isAllowedImageMIME(declared) {
		return "", nil, fmt.Errorf("Unsupported image type %q.", declared)
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		if err != nil {
			return "", nil, errors.New("Image data is not valid base64.")
		}
	}
	if len(raw) == 0 {
		return "", nil, errors.New("The submitted file is empty.")
	}
	return declared, raw, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// encodeAs re-encodes img in the source format. GIF frames beyond the first
// are lost on resize, so resized GIFs are stored as PNG.
func encodeAs(img image.Image, contentType string) ([]byte, string, error) {
	buf := bytes.NewBuffer(nil)
	var err error
	switch contentType {
	case "image/jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: JPEGQuality})
	case "image/webp":
		err = webp.Encode(buf, img, &webp.Options{Quality: WebPQuality})
	case "image/gif":
		err = gif.Encode(buf, img, nil)
	default:
		contentType = "image/png"
		err = png.Encode(buf, img)
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentType, nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return p == "image/jpg" && d == "image/jpeg"
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
