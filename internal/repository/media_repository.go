package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"vitrina-autos/internal/domain"
)

// ErrMediaSetMismatch is returned by Reorder when the supplied id list is not
// exactly the set of media currently attached to the vehicle.
var ErrMediaSetMismatch = errors.New("media ids do not match the vehicle's media set")

// listOrder puts the primary record first, then the explicit ordering;
// creation time and id break ties deterministically.
const listOrder = `is_primary DESC, display_order ASC, created_at ASC, id ASC`

// promoteOrder selects which record inherits the primary flag after the
// current primary is deleted. Same ordering the list uses, so the promoted
// record is always the first one a reader sees. Must match
// domain.NextPrimary.
const promoteOrder = `display_order ASC, created_at ASC, id ASC`

type MediaRepository interface {
	ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error)
	GetByID(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error)
	List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) ([]domain.VehicleMedia, int64, error)
	HasPrimary(ctx context.Context, vehicleID int64) (bool, error)
	NextDisplayOrder(ctx context.Context, vehicleID int64) (int, error)
	Insert(ctx context.Context, media *domain.VehicleMedia, makePrimary bool) error
	SetPrimary(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error)
	SetDisplayOrder(ctx context.Context, vehicleID, mediaID int64, order int) (*domain.VehicleMedia, error)
	Reorder(ctx context.Context, vehicleID int64, mediaIDs []int64) ([]domain.VehicleMedia, error)
	Delete(ctx context.Context, vehicleID, mediaID int64) (deleted, promoted *domain.VehicleMedia, err error)
}

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]domain.VehicleMedia, error) {
	media := []domain.VehicleMedia{}
	query := `SELECT * FROM vehicle_media WHERE vehicle_id = $1 ORDER BY ` + listOrder
	err := r.db.SelectContext(ctx, &media, query, vehicleID)
	return media, err
}

func (r *mediaRepository) GetByID(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error) {
	var media domain.VehicleMedia
	query := `SELECT * FROM vehicle_media WHERE id = $1 AND vehicle_id = $2`
	if err := r.db.GetContext(ctx, &media, query, mediaID, vehicleID); err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) List(ctx context.Context, vehicleID *int64, params domain.PaginationParams) ([]domain.VehicleMedia, int64, error) {
	params.Validate()

	var total int64
	media := []domain.VehicleMedia{}

	if vehicleID != nil {
		countQuery := `SELECT COUNT(*) FROM vehicle_media WHERE vehicle_id = $1`
		if err := r.db.GetContext(ctx, &total, countQuery, *vehicleID); err != nil {
			return nil, 0, err
		}

		query := `SELECT * FROM vehicle_media WHERE vehicle_id = $1 ORDER BY ` + listOrder + ` LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &media, query, *vehicleID, params.PageSize, params.Offset())
		return media, total, err
	}

	countQuery := `SELECT COUNT(*) FROM vehicle_media`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM vehicle_media ORDER BY vehicle_id ASC, ` + listOrder + ` LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &media, query, params.PageSize, params.Offset())
	return media, total, err
}

func (r *mediaRepository) HasPrimary(ctx context.Context, vehicleID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM vehicle_media WHERE vehicle_id = $1 AND is_primary)`
	err := r.db.GetContext(ctx, &exists, query, vehicleID)
	return exists, err
}

func (r *mediaRepository) NextDisplayOrder(ctx context.Context, vehicleID int64) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(display_order) + 1, 0) FROM vehicle_media WHERE vehicle_id = $1`
	err := r.db.GetContext(ctx, &next, query, vehicleID)
	return next, err
}

// Insert stores one processed file. The primary flag is settled inside the
// transaction: when makePrimary is set, any existing primary is cleared
// first; either way a vehicle with no primary adopts the new row, so the
// first row of an empty vehicle is primary even if two uploads race.
func (r *mediaRepository) Insert(ctx context.Context, media *domain.VehicleMedia, makePrimary bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if makePrimary {
		clear := `UPDATE vehicle_media SET is_primary = false WHERE vehicle_id = $1 AND is_primary`
		if _, err := tx.ExecContext(ctx, clear, media.VehicleID); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO vehicle_media
			(vehicle_id, filename, original_name, url, thumbnail_url, media_type,
			 file_size, is_primary, display_order, width, height, duration)
		VALUES
			($1, $2, $3, $4, $5, $6, $7,
			 $8 OR NOT EXISTS(SELECT 1 FROM vehicle_media WHERE vehicle_id = $1 AND is_primary),
			 $9, $10, $11, $12)
		RETURNING id, is_primary, created_at`

	err = tx.QueryRowxContext(ctx, query,
		media.VehicleID, media.Filename, media.OriginalName, media.URL, media.ThumbnailURL,
		media.MediaType, media.FileSize, makePrimary, media.DisplayOrder,
		media.Width, media.Height, media.Duration,
	).Scan(&media.ID, &media.IsPrimary, &media.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SetPrimary clears the old primary and sets the new one as a single atomic
// unit; readers never observe two primaries.
func (r *mediaRepository) SetPrimary(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var media domain.VehicleMedia
	query := `SELECT * FROM vehicle_media WHERE id = $1 AND vehicle_id = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &media, query, mediaID, vehicleID); err != nil {
		return nil, err
	}

	clear := `UPDATE vehicle_media SET is_primary = false WHERE vehicle_id = $1 AND is_primary AND id <> $2`
	if _, err := tx.ExecContext(ctx, clear, vehicleID, mediaID); err != nil {
		return nil, err
	}

	set := `UPDATE vehicle_media SET is_primary = true WHERE id = $1`
	if _, err := tx.ExecContext(ctx, set, mediaID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	media.IsPrimary = true
	return &media, nil
}

func (r *mediaRepository) SetDisplayOrder(ctx context.Context, vehicleID, mediaID int64, order int) (*domain.VehicleMedia, error) {
	var media domain.VehicleMedia
	query := `
		UPDATE vehicle_media SET display_order = $3
		WHERE id = $1 AND vehicle_id = $2
		RETURNING *`
	if err := r.db.GetContext(ctx, &media, query, mediaID, vehicleID, order); err != nil {
		return nil, err
	}
	return &media, nil
}

// Reorder rewrites display_order as the position in the supplied list. The
// id-set comparison happens under FOR UPDATE in the same transaction so a
// concurrent delete cannot slip between validation and the writes.
func (r *mediaRepository) Reorder(ctx context.Context, vehicleID int64, mediaIDs []int64) ([]domain.VehicleMedia, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing []int64
	query := `SELECT id FROM vehicle_media WHERE vehicle_id = $1 ORDER BY id FOR UPDATE`
	if err := tx.SelectContext(ctx, &existing, query, vehicleID); err != nil {
		return nil, err
	}

	if len(existing) != len(mediaIDs) {
		return nil, ErrMediaSetMismatch
	}
	known := make(map[int64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	for _, id := range mediaIDs {
		if !known[id] {
			return nil, ErrMediaSetMismatch
		}
		delete(known, id)
	}

	update := `UPDATE vehicle_media SET display_order = $1 WHERE id = $2 AND vehicle_id = $3`
	for position, id := range mediaIDs {
		if _, err := tx.ExecContext(ctx, update, position, id, vehicleID); err != nil {
			return nil, err
		}
	}

	media := []domain.VehicleMedia{}
	list := `SELECT * FROM vehicle_media WHERE vehicle_id = $1 ORDER BY ` + listOrder
	if err := tx.SelectContext(ctx, &media, list, vehicleID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return media, nil
}

// Delete removes the row and, when the removed record was primary, promotes
// exactly one survivor inside the same transaction. The returned promoted
// record is nil when no promotion happened.
func (r *mediaRepository) Delete(ctx context.Context, vehicleID, mediaID int64) (*domain.VehicleMedia, *domain.VehicleMedia, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var deleted domain.VehicleMedia
	get := `SELECT * FROM vehicle_media WHERE id = $1 AND vehicle_id = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &deleted, get, mediaID, vehicleID); err != nil {
		return nil, nil, err
	}

	del := `DELETE FROM vehicle_media WHERE id = $1`
	if _, err := tx.ExecContext(ctx, del, mediaID); err != nil {
		return nil, nil, err
	}

	var promoted *domain.VehicleMedia
	if deleted.IsPrimary {
		var next domain.VehicleMedia
		pick := `SELECT * FROM vehicle_media WHERE vehicle_id = $1 ORDER BY ` + promoteOrder + ` LIMIT 1 FOR UPDATE`
		err := tx.GetContext(ctx, &next, pick, vehicleID)
		switch {
		case err == nil:
			set := `UPDATE vehicle_media SET is_primary = true WHERE id = $1`
			if _, err := tx.ExecContext(ctx, set, next.ID); err != nil {
				return nil, nil, err
			}
			next.IsPrimary = true
			promoted = &next
		case errors.Is(err, sql.ErrNoRows):
			// Last record deleted; the vehicle simply has no media now.
		default:
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &deleted, promoted, nil
}
