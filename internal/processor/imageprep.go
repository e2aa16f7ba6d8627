// imageprep.go - Image preparation for model upload

package processor

import (
	"bytes"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	startQuality = 90
	minQuality   = 30
	qualityStep  = 10
)

// PrepareImage loads an image, normalizes it to a plain RGB raster, downsizes
// it to fit within maxDimension on both axes, and re-encodes it as JPEG under
// maxBytes, stepping the quality down until the budget is met or the quality
// floor is reached.
//
// On any processing failure the original file's raw bytes are passed through
// unmodified with the MIME type taken from the extension, so a decode problem
// never fails the whole extraction.
func PrepareImage(imagePath string, maxDimension, maxBytes int) ([]byte, string, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return rawPassthrough(imagePath)
	}

	// Clone converts indexed and alpha-channel modes to a plain NRGBA raster.
	img = imaging.Clone(img)

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		if bounds.Dx() > bounds.Dy() {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	quality := startQuality
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return rawPassthrough(imagePath)
	}

	for buf.Len() > maxBytes && quality > minQuality {
		quality -= qualityStep
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return rawPassthrough(imagePath)
		}
	}

	return buf.Bytes(), "image/jpeg", nil
}

// rawPassthrough reads the file as-is and tags the MIME type from the
// extension.
func rawPassthrough(imagePath string) ([]byte, string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, "", err
	}
	return data, MIMETypeFromPath(imagePath), nil
}

// MIMETypeFromPath maps a file extension to its transport MIME type,
// defaulting to image/jpeg.
func MIMETypeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "image/jpeg"
	}
}
