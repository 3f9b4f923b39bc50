package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LocalStore keeps uploads on the local filesystem under a flat layout:
// originals in <base>/vehicles, thumbnails in <base>/thumbnails. Thumbnail
// paths are derivable from the original filename alone, so nothing besides
// the filename needs to be persisted to locate every artifact.
type LocalStore struct {
	baseDir    string
	publicBase string
}

func NewLocalStore(baseDir, publicBase string) *LocalStore {
	return &LocalStore{
		baseDir:    baseDir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}
}

// EnsureDirectories creates the upload directories. Called once at startup
// so request handlers never race on MkdirAll.
func (s *LocalStore) EnsureDirectories() error {
	for _, dir := range []string{vehiclesDir, thumbnailsDir} {
		if err := os.MkdirAll(filepath.Join(s.baseDir, dir), 0o755); err != nil {
			return fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return nil
}

// Stage writes an uploaded file into the vehicles directory under a
// sanitized, uniquified name and returns the paths derived from it.
func (s *LocalStore) Stage(fh *multipart.FileHeader) (ArtifactPaths, error) {
	name := StoredName(fh.Filename)
	paths := s.Paths(name)

	src, err := fh.Open()
	if err != nil {
		return ArtifactPaths{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(paths.FilePath)
	if err != nil {
		return ArtifactPaths{}, fmt.Errorf("create %s: %w", paths.FilePath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(paths.FilePath)
		return ArtifactPaths{}, fmt.Errorf("write %s: %w", paths.FilePath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(paths.FilePath)
		return ArtifactPaths{}, fmt.Errorf("close %s: %w", paths.FilePath, err)
	}

	return paths, nil
}

// Paths resolves the on-disk and public locations for a stored filename.
func (s *LocalStore) Paths(filename string) ArtifactPaths {
	return artifactPaths(s.baseDir, s.publicBase, filename)
}

// Remove deletes the original and its thumbnail. Missing files are not an
// error; the caller may be cleaning up a partially processed upload.
func (s *LocalStore) Remove(filename string) error {
	paths := s.Paths(filename)
	var firstErr error
	for _, p := range []string{paths.FilePath, paths.ThumbnailPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", p).Msg("failed to remove media artifact")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// StoredName sanitizes an original filename and appends a short unique
// suffix before the extension, so repeated uploads of the same file never
// collide: "My Car.JPG" becomes "my_car_1a2b3c4d.jpg".
func StoredName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(original), filepath.Ext(original)))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	clean := strings.Trim(b.String(), "_")
	if clean == "" {
		clean = "file"
	}

	suffix := uuid.New().String()[:8]
	return clean + "_" + suffix + ext
}
