package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vitrina-autos/internal/domain"
)

func TestChoosePrimaryOnInsert(t *testing.T) {
	tests := []struct {
		name               string
		existingHasPrimary bool
		batchIndex         int
		want               bool
	}{
		{"first file on empty vehicle", false, 0, true},
		{"second file on empty vehicle", false, 1, false},
		{"first file when primary exists", true, 0, false},
		{"later file when primary exists", true, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, choosePrimaryOnInsert(tt.existingHasPrimary, tt.batchIndex))
		})
	}
}

// Exercises the two decision functions over random insert/set-primary/delete
// sequences and checks the single-primary rule holds at every step: a vehicle
// with media always has exactly one primary, an empty vehicle has none.
func TestPrimaryInvariant_RandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for seq := 0; seq < 50; seq++ {
		var records []domain.VehicleMedia
		var nextID int64 = 1

		countPrimaries := func() int {
			n := 0
			for _, r := range records {
				if r.IsPrimary {
					n++
				}
			}
			return n
		}

		for op := 0; op < 40; op++ {
			switch rng.Intn(3) {
			case 0: // insert
				hasPrimary := countPrimaries() > 0
				rec := domain.VehicleMedia{
					ID:           nextID,
					DisplayOrder: len(records),
					CreatedAt:    base.Add(time.Duration(nextID) * time.Second),
					IsPrimary:    choosePrimaryOnInsert(hasPrimary, 0),
				}
				nextID++
				records = append(records, rec)
			case 1: // set primary
				if len(records) == 0 {
					continue
				}
				target := rng.Intn(len(records))
				for i := range records {
					records[i].IsPrimary = i == target
				}
			case 2: // delete
				if len(records) == 0 {
					continue
				}
				victim := rng.Intn(len(records))
				wasPrimary := records[victim].IsPrimary
				records = append(records[:victim], records[victim+1:]...)
				if wasPrimary {
					if pick := domain.NextPrimary(records); pick != nil {
						pick.IsPrimary = true
					}
				}
			}

			if len(records) == 0 {
				assert.Equal(t, 0, countPrimaries())
			} else {
				assert.Equal(t, 1, countPrimaries(), "sequence %d op %d", seq, op)
			}
		}
	}
}
