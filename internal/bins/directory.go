package bins

import (
	"eco_collect/internal/models"

	"gorm.io/gorm"
)

// Directory answers which bins belong to a ward. It is the membership oracle
// consulted by stop generation; the caller never filters on bin status
// itself, the directory's contract is to return only what was asked for.
type Directory interface {
	// ActiveBinsForWard returns the ids of currently active bins in the
	// ward, in stable ascending id order.
	ActiveBinsForWard(wardNumber int) ([]uint, error)
	// BinsForWard returns all bin ids registered to the ward regardless of
	// status. Used when tearing a ward out of a route.
	BinsForWard(wardNumber int) ([]uint, error)
}

type directory struct {
	db *gorm.DB
}

// NewDirectory returns a Directory backed by the bins table.
func NewDirectory(db *gorm.DB) Directory {
	return &directory{db: db}
}

func (d *directory) ActiveBinsForWard(wardNumber int) ([]uint, error) {
	var ids []uint
	err := d.db.Model(&models.Bin{}).
		Where("ward_number = ? AND status = ?", wardNumber, models.BinActive).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *directory) BinsForWard(wardNumber int) ([]uint, error) {
	var ids []uint
	err := d.db.Model(&models.Bin{}).
		Where("ward_number = ?", wardNumber).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
