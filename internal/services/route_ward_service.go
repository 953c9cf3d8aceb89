package services

import (
	"errors"
	"fmt"
	"time"

	"eco_collect/internal/bins"
	"eco_collect/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Collection rounds start at 08:00 on the route's collection date. Each ward
// adds a 30 minute offset, each stop within a ward 5 minutes.
const (
	collectionStartHour = 8
	minutesPerWard      = 30
	minutesPerStop      = 5
)

// InterfaceRouteWardService owns RouteWard records. Adding a ward to a route
// materializes its stops in the same transaction; removing a ward tears
// exactly those stops back out.
type InterfaceRouteWardService interface {
	CreateRouteWard(routeID uint, wardNumber int, wardName string, wardOrder int) (*models.RouteWard, error)
	GetRouteWardsByRouteID(routeID uint) ([]models.RouteWard, error)
	GetRouteWardsByDate(date time.Time) ([]models.RouteWard, error)
	DeleteRouteWard(id uint) error
	DeleteRouteWardsByRouteID(routeID uint) error
}

type RouteWardService struct {
	DB        *gorm.DB
	Directory bins.Directory
}

func NewRouteWardService(db *gorm.DB, directory bins.Directory) InterfaceRouteWardService {
	return &RouteWardService{DB: db, Directory: directory}
}

// PlannedEta computes the scheduled arrival for a stop from its ward and stop
// position: collectionDate@08:00 + (wardOrder-1)*30min + (stopOrder-1)*5min.
func PlannedEta(collectionDate time.Time, wardOrder, stopOrder int) time.Time {
	base := time.Date(collectionDate.Year(), collectionDate.Month(), collectionDate.Day(),
		collectionStartHour, 0, 0, 0, collectionDate.Location())
	offset := time.Duration((wardOrder-1)*minutesPerWard+(stopOrder-1)*minutesPerStop) * time.Minute
	return base.Add(offset)
}

// CreateRouteWard creates the ward row and generates one PENDING stop per
// active bin in the ward, in directory order. Ward creation and stop
// materialization are one transaction: from the caller's point of view they
// are one operation.
//
// The generator is not idempotent — invoking it twice for the same ward
// produces duplicate stops. The catalog never re-invokes it for an existing
// ward.
func (s *RouteWardService) CreateRouteWard(routeID uint, wardNumber int, wardName string, wardOrder int) (*models.RouteWard, error) {
	var route models.Route
	if err := s.DB.First(&route, routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route %d", models.ErrNotFound, routeID)
		}
		return nil, err
	}

	binIDs, err := s.Directory.ActiveBinsForWard(wardNumber)
	if err != nil {
		return nil, fmt.Errorf("bin directory lookup for ward %d: %w", wardNumber, err)
	}

	routeWard := models.RouteWard{
		RouteID:    route.ID,
		WardNumber: wardNumber,
		WardName:   wardName,
		WardOrder:  wardOrder,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&routeWard).Error; err != nil {
			return err
		}
		for i, binID := range binIDs {
			stopOrder := i + 1
			eta := PlannedEta(route.CollectionDate, wardOrder, stopOrder)
			stop := models.RouteStop{
				RouteID:    route.ID,
				BinID:      binID,
				DriverID:   route.CollectorID,
				StopOrder:  stopOrder,
				Collected:  false,
				Status:     models.StopPending,
				ReasonCode: models.ReasonNone,
				Source:     models.SourceManual,
				WeightKg:   0,
				PlannedEta: &eta,
			}
			if err := tx.Create(&stop).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"route_id":    route.ID,
		"ward_number": wardNumber,
		"stops":       len(binIDs),
	}).Info("generated route stops for ward")

	return &routeWard, nil
}

func (s *RouteWardService) GetRouteWardsByRouteID(routeID uint) ([]models.RouteWard, error) {
	var wards []models.RouteWard
	err := s.DB.Where("route_id = ?", routeID).Order("ward_order").Find(&wards).Error
	if err != nil {
		return nil, err
	}
	return wards, nil
}

func (s *RouteWardService) GetRouteWardsByDate(date time.Time) ([]models.RouteWard, error) {
	var wards []models.RouteWard
	err := s.DB.Joins("JOIN routes ON routes.id = route_wards.route_id").
		Where("routes.collection_date = ?", date.Format("2006-01-02")).
		Order("route_wards.route_id, route_wards.ward_order").
		Find(&wards).Error
	if err != nil {
		return nil, err
	}
	return wards, nil
}

// DeleteRouteWard removes the stops whose bin belongs to the ward's bin set
// on that route, then the ward row, in one transaction.
func (s *RouteWardService) DeleteRouteWard(id uint) error {
	var ward models.RouteWard
	if err := s.DB.First(&ward, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: route ward %d", models.ErrNotFound, id)
		}
		return err
	}

	binIDs, err := s.Directory.BinsForWard(ward.WardNumber)
	if err != nil {
		return fmt.Errorf("bin directory lookup for ward %d: %w", ward.WardNumber, err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if len(binIDs) > 0 {
			if err := tx.Where("route_id = ? AND bin_id IN ?", ward.RouteID, binIDs).
				Delete(&models.RouteStop{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&ward).Error
	})
}

// DeleteRouteWardsByRouteID drops every stop and ward of a route.
func (s *RouteWardService) DeleteRouteWardsByRouteID(routeID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", routeID).Delete(&models.RouteStop{}).Error; err != nil {
			return err
		}
		return tx.Where("route_id = ?", routeID).Delete(&models.RouteWard{}).Error
	})
}
