package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vitrina-autos/internal/domain"
	"vitrina-autos/internal/middleware"
	"vitrina-autos/internal/repository"
	"vitrina-autos/internal/service"
)

type mockMediaService struct {
	mock.Mock
}

func (m *mockMediaService) ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaService) List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) (*domain.PaginatedResponse[domain.VehicleMedia], error) {
	args := m.Called(ctx, vehicleID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResponse[domain.VehicleMedia]), args.Error(1)
}

func (m *mockMediaService) Upload(ctx context.Context, vehicleID int64, files []*multipart.FileHeader, actorID uuid.UUID) (*domain.UploadResult, error) {
	args := m.Called(ctx, vehicleID, files, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}

func (m *mockMediaService) Update(ctx context.Context, vehicleID, mediaID int64, input domain.UpdateMediaInput, actorID uuid.UUID) (*domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, mediaID, input, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaService) Reorder(ctx context.Context, vehicleID int64, input domain.ReorderMediaInput, actorID uuid.UUID) ([]domain.VehicleMedia, error) {
	args := m.Called(ctx, vehicleID, input, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VehicleMedia), args.Error(1)
}

func (m *mockMediaService) Delete(ctx context.Context, vehicleID, mediaID int64, actorID uuid.UUID) error {
	args := m.Called(ctx, vehicleID, mediaID, actorID)
	return args.Error(0)
}

func newTestApp(svc service.MediaService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	h := NewMediaHandler(svc)
	app.Get("/api/v1/vehicles/:vehicleId/media", h.ListByVehicle)
	app.Post("/api/v1/vehicles/:vehicleId/media", h.Upload)
	app.Post("/api/v1/vehicles/:vehicleId/media/reorder", h.Reorder)
	app.Put("/api/v1/vehicles/:vehicleId/media/:mediaId", h.Update)
	app.Delete("/api/v1/vehicles/:vehicleId/media/:mediaId", h.Delete)
	app.Get("/api/v1/media", h.List)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestMediaHandler_ListByVehicle(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("ListByVehicle", mock.Anything, int64(42)).Return([]domain.VehicleMedia{
			{ID: 1, VehicleID: 42, IsPrimary: true},
			{ID: 2, VehicleID: 42},
		}, nil).Once()

		app := newTestApp(svc)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/42/media", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["data"], 2)
	})

	t.Run("invalid vehicle id", func(t *testing.T) {
		app := newTestApp(new(mockMediaService))
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/garbage/media", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("ListByVehicle", mock.Anything, int64(99)).Return(nil, service.ErrVehicleNotFound).Once()

		app := newTestApp(svc)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/99/media", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func uploadRequest(t *testing.T, url, field string, filenames ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestMediaHandler_Upload(t *testing.T) {
	t.Run("created with partial failures", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Upload", mock.Anything, int64(42), mock.MatchedBy(func(files []*multipart.FileHeader) bool {
			return len(files) == 2
		}), mock.Anything).Return(&domain.UploadResult{
			Uploaded: []domain.VehicleMedia{{ID: 1, VehicleID: 42, IsPrimary: true}},
			Failed:   []domain.UploadFailure{{FileName: "bad.jpg", Reason: "decode image: unexpected EOF"}},
		}, nil).Once()

		app := newTestApp(svc)
		resp, err := app.Test(uploadRequest(t, "/api/v1/vehicles/42/media", "images", "good.jpg", "bad.jpg"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["failed"], 1)
	})

	t.Run("legacy field name accepted", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Upload", mock.Anything, int64(42), mock.MatchedBy(func(files []*multipart.FileHeader) bool {
			return len(files) == 1
		}), mock.Anything).Return(&domain.UploadResult{
			Uploaded: []domain.VehicleMedia{{ID: 1, VehicleID: 42}},
		}, nil).Once()

		app := newTestApp(svc)
		resp, err := app.Test(uploadRequest(t, "/api/v1/vehicles/42/media", "vehicleMedia", "a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("all files failed maps to 500", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Upload", mock.Anything, int64(42), mock.Anything, mock.Anything).
			Return(nil, service.ErrAllFilesFailed).Once()

		app := newTestApp(svc)
		resp, err := app.Test(uploadRequest(t, "/api/v1/vehicles/42/media", "images", "bad.jpg"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("too many files maps to 400", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Upload", mock.Anything, int64(42), mock.Anything, mock.Anything).
			Return(nil, service.ErrTooManyFiles).Once()

		app := newTestApp(svc)
		resp, err := app.Test(uploadRequest(t, "/api/v1/vehicles/42/media", "images", "a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing multipart body", func(t *testing.T) {
		app := newTestApp(new(mockMediaService))
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/42/media", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMediaHandler_Update(t *testing.T) {
	t.Run("set primary", func(t *testing.T) {
		svc := new(mockMediaService)
		isPrimary := true
		svc.On("Update", mock.Anything, int64(42), int64(2), domain.UpdateMediaInput{IsPrimary: &isPrimary}, mock.Anything).
			Return(&domain.VehicleMedia{ID: 2, VehicleID: 42, IsPrimary: true}, nil).Once()

		app := newTestApp(svc)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/vehicles/42/media/2",
			bytes.NewBufferString(`{"is_primary": true}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unset primary rejected", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Update", mock.Anything, int64(42), int64(1), mock.Anything, mock.Anything).
			Return(nil, service.ErrCannotUnsetPrimary).Once()

		app := newTestApp(svc)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/vehicles/42/media/1",
			bytes.NewBufferString(`{"is_primary": false}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("media not found", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Update", mock.Anything, int64(42), int64(404), mock.Anything, mock.Anything).
			Return(nil, service.ErrMediaNotFound).Once()

		app := newTestApp(svc)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/vehicles/42/media/404",
			bytes.NewBufferString(`{"display_order": 1}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMediaHandler_Reorder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Reorder", mock.Anything, int64(42), domain.ReorderMediaInput{ImageIDs: []int64{3, 1, 2}}, mock.Anything).
			Return([]domain.VehicleMedia{{ID: 3}, {ID: 1}, {ID: 2}}, nil).Once()

		app := newTestApp(svc)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/42/media/reorder",
			bytes.NewBufferString(`{"imageIds": [3, 1, 2]}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Len(t, body["data"], 3)
	})

	t.Run("mismatched id set", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Reorder", mock.Anything, int64(42), mock.Anything, mock.Anything).
			Return(nil, repository.ErrMediaSetMismatch).Once()

		app := newTestApp(svc)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/42/media/reorder",
			bytes.NewBufferString(`{"imageIds": [1]}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestMediaHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Delete", mock.Anything, int64(42), int64(2), mock.Anything).Return(nil).Once()

		app := newTestApp(svc)
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/vehicles/42/media/2", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockMediaService)
		svc.On("Delete", mock.Anything, int64(42), int64(404), mock.Anything).
			Return(service.ErrMediaNotFound).Once()

		app := newTestApp(svc)
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/vehicles/42/media/404", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMediaHandler_List(t *testing.T) {
	svc := new(mockMediaService)
	vid := int64(42)
	page := domain.NewPaginatedResponse([]domain.VehicleMedia{{ID: 1, VehicleID: 42}}, 1, 20, 1)
	svc.On("List", mock.Anything, &vid, mock.Anything).Return(&page, nil).Once()

	app := newTestApp(svc)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/media?vehicle_id=42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}
