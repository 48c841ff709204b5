package utils

import (
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20 // 5MB

var ErrBadImage = errors.New("image must be a png, jpeg, gif or webp file up to 5MB")

var imageExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveImage stores an uploaded image in folder under a random name and
// returns the public path it is served from (/uploads/<name>).
func SaveImage(c *gin.Context, fh *multipart.FileHeader, folder string) (string, error) {
	if fh.Size <= 0 || fh.Size > MaxImageSize {
		return "", ErrBadImage
	}
	ext, err := sniffImage(fh)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(fh, filepath.Join(folder, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// sniffImage looks at the file bytes; the part's Content-Type is ignored.
func sniffImage(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	ext, ok := imageExt[mt.String()]
	if !ok {
		return "", ErrBadImage
	}
	return ext, nil
}
