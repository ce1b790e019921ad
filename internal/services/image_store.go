package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/checkia-backend/internal/platform/gcp"
	"github.com/yungbote/checkia-backend/internal/platform/logger"
)

const MaxImageBytes = 10 << 20

// StoredImage is where an uploaded image landed.
type StoredImage struct {
	Path string
	URL  string
}

// ImageStore is the object storage collaborator for uploaded images.
type ImageStore interface {
	Upload(ctx context.Context, ownerID uuid.UUID, kind string, filename string, data []byte) (*StoredImage, error)
	URL(path string) string
	PublicURL(path string) string
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

type imageStore struct {
	log    *logger.Logger
	bucket gcp.BucketService
	now    func() time.Time
}

func NewImageStore(baseLog *logger.Logger, bucket gcp.BucketService) ImageStore {
	return &imageStore{
		log:    baseLog.With("service", "ImageStore"),
		bucket: bucket,
		now:    time.Now,
	}
}

// DetectImageFormat decodes only the image header. It returns the canonical
// file extension for png, jpeg, gif and webp payloads.
func DetectImageFormat(data []byte) (string, error) {
	if len(data) == 0 {
		return "", newValidationError("image", "no image provided")
	}
	if len(data) > MaxImageBytes {
		return "", newValidationError("image", fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", newValidationError("image", "unsupported or corrupt image")
	}
	switch format {
	case "jpeg":
		return "jpg", nil
	case "png", "gif", "webp":
		return format, nil
	}
	return "", newValidationError("image", "unsupported image format "+format)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:2*n]
	}
	return hex.EncodeToString(b)
}

// ImageKey builds {owner}/{kind}/{YYYYmmdd_HHMMSS}_{hex8}.{ext}.
func ImageKey(ownerID uuid.UUID, kind string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s/%s_%s.%s", ownerID, kind, at.UTC().Format("20060102_150405"), randomHex(4), ext)
}

func (s *imageStore) Upload(ctx context.Context, ownerID uuid.UUID, kind string, filename string, data []byte) (*StoredImage, error) {
	if s.bucket == nil {
		return nil, ErrStorageUnavailable
	}
	ext, err := DetectImageFormat(data)
	if err != nil {
		return nil, err
	}
	key := ImageKey(ownerID, kind, s.now(), ext)
	if err := s.bucket.UploadFile(ctx, gcp.BucketCategoryImage, key, bytes.NewReader(data)); err != nil {
		s.log.Error("Image upload failed", "key", key, "filename", filename, "error", err)
		return nil, fmt.Errorf("upload image: %w", err)
	}
	s.log.Debug("Image uploaded", "key", key, "bytes", len(data))
	return &StoredImage{Path: key, URL: s.URL(key)}, nil
}

// URL prefers a signed URL valid for the longest allowed lifetime and falls
// back to the public object URL.
func (s *imageStore) URL(path string) string {
	if s.bucket == nil || path == "" {
		return ""
	}
	u, err := s.bucket.SignedURL(gcp.BucketCategoryImage, path, gcp.MaxSignedURLTTL)
	if err != nil || u == "" {
		if err != nil {
			s.log.Warn("Signed URL failed; using public URL", "key", path, "error", err)
		}
		return s.bucket.GetPublicURL(gcp.BucketCategoryImage, path)
	}
	return u
}

func (s *imageStore) PublicURL(path string) string {
	if s.bucket == nil || path == "" {
		return ""
	}
	return s.bucket.GetPublicURL(gcp.BucketCategoryImage, path)
}

func (s *imageStore) Download(ctx context.Context, path string) ([]byte, error) {
	if s.bucket == nil {
		return nil, ErrStorageUnavailable
	}
	rc, err := s.bucket.DownloadFile(ctx, gcp.BucketCategoryImage, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
}

func (s *imageStore) Delete(ctx context.Context, path string) error {
	if s.bucket == nil || path == "" {
		return nil
	}
	err := s.bucket.DeleteFile(ctx, gcp.BucketCategoryImage, path)
	if errors.Is(err, gcp.ErrObjectNotFound) {
		return nil
	}
	return err
}
