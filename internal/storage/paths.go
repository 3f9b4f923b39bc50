package storage

import (
	"path/filepath"
	"strings"
)

const (
	vehiclesDir   = "vehicles"
	thumbnailsDir = "thumbnails"
	thumbSuffix   = "_thumb.jpg"
)

// ArtifactPaths holds everything derived from a stored filename: where the
// file and its thumbnail live on disk, and the URLs clients use to fetch them.
type ArtifactPaths struct {
	Filename      string
	FilePath      string
	ThumbnailPath string
	URL           string
	ThumbnailURL  string
}

// ThumbnailName derives the thumbnail filename from a stored filename. The
// thumbnail is always a JPEG regardless of the source format.
func ThumbnailName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + thumbSuffix
}

func artifactPaths(baseDir, publicBase, filename string) ArtifactPaths {
	thumb := ThumbnailName(filename)
	return ArtifactPaths{
		Filename:      filename,
		FilePath:      filepath.Join(baseDir, vehiclesDir, filename),
		ThumbnailPath: filepath.Join(baseDir, thumbnailsDir, thumb),
		URL:           publicBase + "/uploads/" + vehiclesDir + "/" + filename,
		ThumbnailURL:  publicBase + "/uploads/" + thumbnailsDir + "/" + thumb,
	}
}
