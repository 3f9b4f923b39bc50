package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"vitrina-autos/internal/domain"
	"vitrina-autos/internal/processing"
	"vitrina-autos/internal/repository"
	"vitrina-autos/internal/storage"
)

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrMediaNotFound       = errors.New("media not found")
	ErrNoFilesUploaded     = errors.New("no files uploaded")
	ErrTooManyFiles        = errors.New("too many files in one upload")
	ErrFileTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrAllFilesFailed      = errors.New("all files failed to process")
	ErrNothingToUpdate     = errors.New("nothing to update")
	ErrCannotUnsetPrimary  = errors.New("cannot unset the primary flag; set another record primary instead")
)

// Per-file failure categories. The wrapped error carries filesystem paths
// and tool output, which belong in the log, not in a response body.
var (
	errStoreFile   = errors.New("file could not be stored")
	errProcessFile = errors.New("file could not be processed")
	errRecordFile  = errors.New("file could not be saved")
)

const (
	// MaxFilesPerUpload caps one multipart batch.
	MaxFilesPerUpload = 10

	mediaCacheTTL = 5 * time.Minute
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

var imageMimeTypes = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/webp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".webm": true,
}

var videoMimeTypes = map[string]bool{
	"video/mp4": true, "video/quicktime": true,
	"video/x-msvideo": true, "video/webm": true,
}

// MediaStore is the filesystem side of the pipeline: staging uploads,
// resolving artifact paths, removing artifacts.
type MediaStore interface {
	Stage(fh *multipart.FileHeader) (storage.ArtifactPaths, error)
	Paths(filename string) storage.ArtifactPaths
	Remove(filename string) error
}

// MediaProcessor turns a staged file into its stored rendition, thumbnail
// and metadata.
type MediaProcessor interface {
	ProcessImage(ctx context.Context, path, thumbPath string) (processing.ImageMeta, error)
	ProcessVideo(ctx context.Context, path, thumbPath string) (processing.VideoMeta, error)
}

type MediaService interface {
	ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error)
	List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) (*domain.PaginatedResponse[domain.VehicleMedia], error)
	Upload(ctx context.Context, vehicleID int64, files []*multipart.FileHeader, actorID uuid.UUID) (*domain.UploadResult, error)
	Update(ctx context.Context, vehicleID, mediaID int64, input domain.UpdateMediaInput, actorID uuid.UUID) (*domain.VehicleMedia, error)
	Reorder(ctx context.Context, vehicleID int64, input domain.ReorderMediaInput, actorID uuid.UUID) ([]domain.VehicleMedia, error)
	Delete(ctx context.Context, vehicleID, mediaID int64, actorID uuid.UUID) error
}

type mediaService struct {
	mediaRepo   repository.MediaRepository
	vehicleRepo repository.VehicleRepository
	auditRepo   repository.AuditLogRepository
	store       MediaStore
	processor   MediaProcessor
	redis       *redis.Client
	maxFileSize int64

	mu           sync.Mutex
	vehicleLocks map[int64]*sync.Mutex
}

func NewMediaService(
	mediaRepo repository.MediaRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditLogRepository,
	store MediaStore,
	processor MediaProcessor,
	redisClient *redis.Client,
	maxUploadMB int64,
) MediaService {
	return &mediaService{
		mediaRepo:    mediaRepo,
		vehicleRepo:  vehicleRepo,
		auditRepo:    auditRepo,
		store:        store,
		processor:    processor,
		redis:        redisClient,
		maxFileSize:  maxUploadMB << 20,
		vehicleLocks: make(map[int64]*sync.Mutex),
	}
}

// lockVehicle serializes mutations per vehicle. The database transactions
// already keep the primary invariant; the lock keeps display_order
// assignment in a racing batch from interleaving.
func (s *mediaService) lockVehicle(vehicleID int64) func() {
	s.mu.Lock()
	l, ok := s.vehicleLocks[vehicleID]
	if !ok {
		l = &sync.Mutex{}
		s.vehicleLocks[vehicleID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *mediaService) ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error) {
	exists, err := s.vehicleRepo.Exists(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	cacheKey := mediaCacheKey(vehicleID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var media []domain.VehicleMedia
			if json.Unmarshal([]byte(cached), &media) == nil {
				return media, nil
			}
		}
	}

	media, err := s.mediaRepo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(media); err == nil {
			s.redis.Set(ctx, cacheKey, data, mediaCacheTTL)
		}
	}
	return media, nil
}

func (s *mediaService) List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) (*domain.PaginatedResponse[domain.VehicleMedia], error) {
	media, total, err := s.mediaRepo.List(ctx, vehicleID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	resp := domain.NewPaginatedResponse(media, params.Page, params.PageSize, total)
	return &resp, nil
}

func (s *mediaService) Upload(ctx context.Context, vehicleID int64, files []*multipart.FileHeader, actorID uuid.UUID) (*domain.UploadResult, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}

	if len(files) == 0 {
		return nil, ErrNoFilesUploaded
	}
	if len(files) > MaxFilesPerUpload {
		return nil, ErrTooManyFiles
	}

	// Validation failures reject the whole batch before anything touches
	// disk; only processing failures degrade to per-file errors.
	mediaTypes := make([]domain.MediaType, len(files))
	for i, fh := range files {
		mediaType, err := validateFile(fh, s.maxFileSize)
		if err != nil {
			return nil, err
		}
		mediaTypes[i] = mediaType
	}

	result := &domain.UploadResult{}

	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	hasPrimary, err := s.mediaRepo.HasPrimary(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check primary: %w", err)
	}
	nextOrder, err := s.mediaRepo.NextDisplayOrder(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute display order: %w", err)
	}

	for i, fh := range files {
		media, err := s.ingestFile(ctx, vehicleID, fh, mediaTypes[i], hasPrimary, nextOrder, len(result.Uploaded))
		if err != nil {
			log.Warn().Err(err).
				Int64("vehicle_id", vehicleID).
				Str("file", fh.Filename).
				Msg("file rejected during upload")
			result.Failed = append(result.Failed, domain.UploadFailure{FileName: fh.Filename, Reason: ingestReason(err)})
			continue
		}

		hasPrimary = hasPrimary || media.IsPrimary
		nextOrder++
		result.Uploaded = append(result.Uploaded, *media)
	}

	if len(result.Uploaded) == 0 {
		return nil, ErrAllFilesFailed
	}

	s.invalidateCache(ctx, vehicleID)
	s.audit(ctx, actorID, domain.ActionUpload, vehicleID, map[string]any{
		"vehicle":  fmt.Sprintf("%d %s %s", vehicle.Year, vehicle.Make, vehicle.Model),
		"uploaded": len(result.Uploaded),
		"failed":   len(result.Failed),
	})
	return result, nil
}

// ingestFile stages, processes and records one file. Every failure after
// staging removes the staged artifacts so nothing orphaned stays on disk.
func (s *mediaService) ingestFile(
	ctx context.Context,
	vehicleID int64,
	fh *multipart.FileHeader,
	mediaType domain.MediaType,
	hasPrimary bool,
	displayOrder, batchIndex int,
) (*domain.VehicleMedia, error) {
	paths, err := s.store.Stage(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreFile, err)
	}

	media := &domain.VehicleMedia{
		VehicleID:    vehicleID,
		Filename:     paths.Filename,
		OriginalName: fh.Filename,
		URL:          paths.URL,
		ThumbnailURL: paths.ThumbnailURL,
		MediaType:    mediaType,
		FileSize:     fh.Size,
		DisplayOrder: displayOrder,
	}

	switch mediaType {
	case domain.MediaTypeImage:
		meta, err := s.processor.ProcessImage(ctx, paths.FilePath, paths.ThumbnailPath)
		if err != nil {
			s.store.Remove(paths.Filename)
			return nil, fmt.Errorf("%w: %v", errProcessFile, err)
		}
		media.Width = &meta.Width
		media.Height = &meta.Height
	case domain.MediaTypeVideo:
		meta, err := s.processor.ProcessVideo(ctx, paths.FilePath, paths.ThumbnailPath)
		if err != nil {
			s.store.Remove(paths.Filename)
			return nil, fmt.Errorf("%w: %v", errProcessFile, err)
		}
		media.Width = &meta.Width
		media.Height = &meta.Height
		media.Duration = &meta.Duration
	}

	makePrimary := choosePrimaryOnInsert(hasPrimary, batchIndex)
	if err := s.mediaRepo.Insert(ctx, media, makePrimary); err != nil {
		s.store.Remove(paths.Filename)
		return nil, fmt.Errorf("%w: %v", errRecordFile, err)
	}
	return media, nil
}

// ingestReason strips a per-file error down to its category for the response
// body; the wrapped detail only goes to the log.
func ingestReason(err error) string {
	for _, category := range []error{errStoreFile, errProcessFile, errRecordFile} {
		if errors.Is(err, category) {
			return category.Error()
		}
	}
	return errProcessFile.Error()
}

func (s *mediaService) Update(ctx context.Context, vehicleID, mediaID int64, input domain.UpdateMediaInput, actorID uuid.UUID) (*domain.VehicleMedia, error) {
	if input.Empty() {
		return nil, ErrNothingToUpdate
	}

	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	media, err := s.mediaRepo.GetByID(ctx, vehicleID, mediaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	if input.IsPrimary != nil {
		if !*input.IsPrimary {
			if media.IsPrimary {
				return nil, ErrCannotUnsetPrimary
			}
			// Already non-primary; nothing to change.
		} else {
			media, err = s.mediaRepo.SetPrimary(ctx, vehicleID, mediaID)
			if err != nil {
				return nil, fmt.Errorf("failed to set primary: %w", err)
			}
		}
	}

	if input.DisplayOrder != nil {
		media, err = s.mediaRepo.SetDisplayOrder(ctx, vehicleID, mediaID, *input.DisplayOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to set display order: %w", err)
		}
	}

	s.invalidateCache(ctx, vehicleID)
	s.audit(ctx, actorID, domain.ActionUpdate, vehicleID, map[string]any{
		"media_id":      mediaID,
		"is_primary":    input.IsPrimary,
		"display_order": input.DisplayOrder,
	})
	return media, nil
}

func (s *mediaService) Reorder(ctx context.Context, vehicleID int64, input domain.ReorderMediaInput, actorID uuid.UUID) ([]domain.VehicleMedia, error) {
	exists, err := s.vehicleRepo.Exists(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vehicle: %w", err)
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	media, err := s.mediaRepo.Reorder(ctx, vehicleID, input.ImageIDs)
	if err != nil {
		if errors.Is(err, repository.ErrMediaSetMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reorder media: %w", err)
	}

	s.invalidateCache(ctx, vehicleID)
	s.audit(ctx, actorID, domain.ActionReorder, vehicleID, map[string]any{
		"order": input.ImageIDs,
	})
	return media, nil
}

func (s *mediaService) Delete(ctx context.Context, vehicleID, mediaID int64, actorID uuid.UUID) error {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	deleted, promoted, err := s.mediaRepo.Delete(ctx, vehicleID, mediaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMediaNotFound
		}
		return fmt.Errorf("failed to delete media: %w", err)
	}

	// The record is gone either way; leftover files are logged, not fatal.
	if err := s.store.Remove(deleted.Filename); err != nil {
		log.Warn().Err(err).
			Int64("media_id", deleted.ID).
			Str("filename", deleted.Filename).
			Msg("media record deleted but artifacts remain on disk")
	}

	detail := map[string]any{"media_id": mediaID, "filename": deleted.Filename}
	if promoted != nil {
		detail["promoted_id"] = promoted.ID
	}

	s.invalidateCache(ctx, vehicleID)
	s.audit(ctx, actorID, domain.ActionDelete, vehicleID, detail)
	return nil
}

// validateFile classifies the upload. Both the extension and the declared
// content type have to agree on the media class.
func validateFile(fh *multipart.FileHeader, maxSize int64) (domain.MediaType, error) {
	if fh.Size > maxSize {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d MB", ErrFileTooLarge, fh.Filename, fh.Size, maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mime := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0]))

	switch {
	case imageExtensions[ext]:
		if !imageMimeTypes[mime] {
			return "", fmt.Errorf("%w: content type %q does not match image extension %s", ErrUnsupportedFileType, mime, ext)
		}
		return domain.MediaTypeImage, nil
	case videoExtensions[ext]:
		if !videoMimeTypes[mime] {
			return "", fmt.Errorf("%w: content type %q does not match video extension %s", ErrUnsupportedFileType, mime, ext)
		}
		return domain.MediaTypeVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, fh.Filename)
	}
}

func mediaCacheKey(vehicleID int64) string {
	return fmt.Sprintf("vehicle:%d:media", vehicleID)
}

func (s *mediaService) invalidateCache(ctx context.Context, vehicleID int64) {
	if s.redis != nil {
		s.redis.Del(ctx, mediaCacheKey(vehicleID))
	}
}

func (s *mediaService) audit(ctx context.Context, actorID uuid.UUID, action string, vehicleID int64, detail map[string]any) {
	err := repository.CreateAuditLog(ctx, s.auditRepo, actorID, action, domain.EntityMedia,
		fmt.Sprintf("%d", vehicleID), detail)
	if err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}
