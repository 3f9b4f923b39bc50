package processing

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Register webp decoding; renditions are always re-encoded as JPEG.
	_ "golang.org/x/image/webp"
)

const (
	renditionMaxWidth  = 1200
	renditionMaxHeight = 800
	renditionQuality   = 80

	thumbWidth   = 300
	thumbHeight  = 200
	thumbQuality = 70
)

// ImageMeta describes the stored rendition, not the original upload.
type ImageMeta struct {
	Width  int
	Height int
}

// ProcessImage rewrites the staged original in place as a web rendition
// (fit inside 1200x800, JPEG) and writes a 300x200 cover thumbnail. The
// rendition keeps the staged filename even when the upload was png or webp;
// browsers key off Content-Type, not the extension.
func ProcessImage(path, thumbPath string) (ImageMeta, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return ImageMeta{}, fmt.Errorf("decode image: %w", err)
	}

	rendition := img
	bounds := img.Bounds()
	if bounds.Dx() > renditionMaxWidth || bounds.Dy() > renditionMaxHeight {
		rendition = imaging.Fit(img, renditionMaxWidth, renditionMaxHeight, imaging.Lanczos)
	}

	if err := writeJPEGAtomic(path, rendition, renditionQuality); err != nil {
		return ImageMeta{}, fmt.Errorf("write rendition: %w", err)
	}

	thumb := imaging.Fill(img, thumbWidth, thumbHeight, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(thumbQuality)); err != nil {
		return ImageMeta{}, fmt.Errorf("write thumbnail: %w", err)
	}

	size := rendition.Bounds()
	return ImageMeta{Width: size.Dx(), Height: size.Dy()}, nil
}

// writeJPEGAtomic encodes to a sibling temp file and renames over the
// target, so a failure mid-encode never leaves a truncated rendition.
func writeJPEGAtomic(path string, img image.Image, quality int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rendition-*")
	if err != nil {
		return err
	}

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
