package domain

import (
	"time"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// VehicleMedia is one stored photo or video attached to a vehicle. Filename is
// the collision-resistant stored name; URL and ThumbnailURL are the public
// paths derived from it at upload time.
type VehicleMedia struct {
	ID           int64     `json:"id" db:"id"`
	VehicleID    int64     `json:"vehicle_id" db:"vehicle_id"`
	Filename     string    `json:"filename" db:"filename"`
	OriginalName string    `json:"original_name" db:"original_name"`
	URL          string    `json:"url" db:"url"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	MediaType    MediaType `json:"media_type" db:"media_type"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	IsPrimary    bool      `json:"is_primary" db:"is_primary"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	Width        *int      `json:"width,omitempty" db:"width"`
	Height       *int      `json:"height,omitempty" db:"height"`
	Duration     *float64  `json:"duration,omitempty" db:"duration"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NextPrimary picks which record inherits the primary flag after the current
// primary is removed: lowest display_order, then earliest created_at, then
// lowest id. Returns nil when nothing remains. The repository's promotion
// query applies this exact ordering; the integration tests hold the two
// implementations together.
func NextPrimary(remaining []VehicleMedia) *VehicleMedia {
	var pick *VehicleMedia
	for i := range remaining {
		m := &remaining[i]
		if pick == nil || promotesBefore(m, pick) {
			pick = m
		}
	}
	return pick
}

func promotesBefore(a, b *VehicleMedia) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

type UpdateMediaInput struct {
	IsPrimary    *bool `json:"is_primary,omitempty"`
	DisplayOrder *int  `json:"display_order,omitempty"`
}

func (i UpdateMediaInput) Empty() bool {
	return i.IsPrimary == nil && i.DisplayOrder == nil
}

type ReorderMediaInput struct {
	ImageIDs []int64 `json:"imageIds"`
}

// UploadFailure reports why a single file in a batch was not stored.
type UploadFailure struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// UploadResult enumerates the outcome per file; the batch counts as a partial
// success as long as Uploaded is non-empty.
type UploadResult struct {
	Uploaded []VehicleMedia  `json:"uploaded"`
	Failed   []UploadFailure `json:"failed,omitempty"`
}
