package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const maxImageSide = 1280

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// ImageStore persists an uploaded image and returns the URL it is served from.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

// LocalImageStore writes images under dir, downscaled to fit maxImageSide, and serves
// them from publicURL/uploads.
type LocalImageStore struct {
	dir       string
	publicURL string
}

func NewLocalImageStore(dir, publicURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalImageStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}

	name := uniqueFilename(file.Filename)
	if err := imaging.Save(img, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return s.publicURL + "/uploads/" + name, nil
}

// uniqueFilename keeps the original extension when imaging can encode it, otherwise
// falls back to png.
func uniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if _, err := imaging.FormatFromExtension(ext); err != nil {
		ext = ".png"
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeFilename.ReplaceAllString(base, "_")
	return fmt.Sprintf("%s-%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), base, ext)
}
