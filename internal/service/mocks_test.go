package service

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"vitrina-autos/internal/domain"
	"vitrina-autos/internal/processing"
	"vitrina-autos/internal/storage"
)

type mockMediaRepository struct {
	mock.Mock
}

func (m *mockMediaRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaRepository) GetByID(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaRepository) List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) ([]domain.VehicleMedia, int64, error) {
	args := m.Called(ctx, vehicleID, params)
	return args.Get(0).([]domain.VehicleMedia), args.Get(1).(int64), args.Error(2)
}

func (m *mockMediaRepository) HasPrimary(ctx context.Context, vehicleID int64) (bool, error) {
	args := m.Called(ctx, vehicleID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMediaRepository) NextDisplayOrder(ctx context.Context, vehicleID int64) (int, error) {
	args := m.Called(ctx, vehicleID)
	return args.Int(0), args.Error(1)
}

func (m *mockMediaRepository) Insert(ctx context.Context, media *domain.VehicleMedia, makePrimary bool) error {
	args := m.Called(ctx, media, makePrimary)
	return args.Error(0)
}

func (m *mockMediaRepository) SetPrimary(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaRepository) SetDisplayOrder(ctx context.Context, vehicleID, mediaID int64, order int) (*domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaID, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaRepository) Reorder(ctx context.Context, vehicleID int64, mediaIDs []int64) ([]domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaRepository) Delete(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, *domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaID)
	var deleted, promoted *domain.VehicleMedia
	if args.Get(0) != nil {
		deleted = args.Get(0).(*domain.VehicleMedia)
	}
	if args.Get(1) != nil {
		promoted = args.Get(1).(*domain.VehicleMedia)
	}
	return deleted, promoted, args.Error(2)
}

type mockVehicleRepository struct {
	mock.Mock
}

func (m *mockVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *mockVehicleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockAuditLogRepository struct {
	mock.Mock
}

func (m *mockAuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockAuditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *mockAuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, entityType, entityID, params)
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Stage(fh *multipart.FileHeader) (storage.ArtifactPaths, error) {
	args := m.Called(fh)
	return args.Get(0).(storage.ArtifactPaths), args.Error(1)
}

func (m *mockMediaStore) Paths(filename string) storage.ArtifactPaths {
	args := m.Called(filename)
	return args.Get(0).(storage.ArtifactPaths)
}

func (m *mockMediaStore) Remove(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

type mockMediaProcessor struct {
	mock.Mock
}

func (m *mockMediaProcessor) ProcessImage(ctx context.Context, path, thumbPath string) (processing.ImageMeta, error) {
	args := m.Called(ctx, path, thumbPath)
	return args.Get(0).(processing.ImageMeta), args.Error(1)
}

func (m *mockMediaProcessor) ProcessVideo(ctx context.Context, path, thumbPath string) (processing.VideoMeta, error) {
	args := m.Called(ctx, path, thumbPath)
	return args.Get(0).(processing.VideoMeta), args.Error(1)
}
