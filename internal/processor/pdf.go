// pdf.go - PDF page rasterization

package processor

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// RenderPDFFirstPage rasterizes the first page of a PDF to a PNG file next to
// the source and returns its path. Only the first page is rendered to bound
// memory and model cost; multi-page statements are out of scope for a single
// receipt scan.
//
// The caller owns the returned file and must remove it when done.
func RenderPDFFirstPage(pdfPath string, dpi int) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return "", fmt.Errorf("failed to render PDF page: %w", err)
	}

	outPath := pageImagePath(pdfPath)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create page image: %w", err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(outPath)
		return "", err
	}

	return outPath, nil
}

// pageImagePath derives the rendered page's filename, trimming the PDF
// extension whatever its case.
func pageImagePath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + "_page0.png"
}
