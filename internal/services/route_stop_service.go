package services

import (
	"errors"
	"fmt"
	"time"

	"eco_collect/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InterfaceRouteStopService owns all RouteStop mutation: validated field
// setters and the status write that triggers followup creation.
type InterfaceRouteStopService interface {
	GetByID(id uint) (*models.RouteStop, error)
	GetByRouteIDOrdered(routeID uint) ([]models.RouteStop, error)
	GetByRouteAndBin(routeID, binID uint) (*models.RouteStop, error)
	GetByDriverID(driverID uint) ([]models.RouteStop, error)
	GetByStatus(status models.StopStatus) ([]models.RouteStop, error)

	SetCollected(id uint, collected bool) (*models.RouteStop, error)
	SetArrivedAt(id uint, arrivedAt time.Time) (*models.RouteStop, error)
	SetPhoto(id uint, photoURL string) (*models.RouteStop, error)
	SetWeight(id uint, weightKg float64) (*models.RouteStop, error)
	SetNotes(id uint, notes string) (*models.RouteStop, error)
	SetReasonCode(id uint, reason models.StopReasonCode) (*models.RouteStop, error)
	Reassign(id, newDriverID uint) (*models.RouteStop, error)
	AssignDriverForRoute(routeID, driverID uint) error

	UpdateStatusWithFollowup(id uint, status models.StopStatus) (*models.RouteStop, error)
	RecalculatePlannedEtas() (int, error)
}

type RouteStopService struct {
	DB        *gorm.DB
	Followups InterfaceFollowupService
}

func NewRouteStopService(db *gorm.DB, followups InterfaceFollowupService) InterfaceRouteStopService {
	return &RouteStopService{DB: db, Followups: followups}
}

func (s *RouteStopService) GetByID(id uint) (*models.RouteStop, error) {
	return s.findStop(id)
}

func (s *RouteStopService) GetByRouteIDOrdered(routeID uint) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	err := s.DB.Where("route_id = ?", routeID).Order("stop_order").Find(&stops).Error
	if err != nil {
		return nil, err
	}
	return stops, nil
}

func (s *RouteStopService) GetByRouteAndBin(routeID, binID uint) (*models.RouteStop, error) {
	var stop models.RouteStop
	err := s.DB.Where("route_id = ? AND bin_id = ?", routeID, binID).First(&stop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route stop for route %d bin %d", models.ErrNotFound, routeID, binID)
		}
		return nil, err
	}
	return &stop, nil
}

func (s *RouteStopService) GetByDriverID(driverID uint) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	err := s.DB.Where("driver_id = ? OR reassigned_to_driver_id = ?", driverID, driverID).
		Order("planned_eta").Find(&stops).Error
	if err != nil {
		return nil, err
	}
	return stops, nil
}

func (s *RouteStopService) GetByStatus(status models.StopStatus) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	if err := s.DB.Where("status = ?", status).Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

func (s *RouteStopService) SetCollected(id uint, collected bool) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		stop.Collected = collected
		return nil
	})
}

func (s *RouteStopService) SetArrivedAt(id uint, arrivedAt time.Time) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		stop.ArrivedAt = &arrivedAt
		return nil
	})
}

func (s *RouteStopService) SetPhoto(id uint, photoURL string) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		stop.PhotoURL = photoURL
		return nil
	})
}

func (s *RouteStopService) SetWeight(id uint, weightKg float64) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		if weightKg < 0 {
			return fmt.Errorf("%w: weight must not be negative", models.ErrIllegalState)
		}
		stop.WeightKg = weightKg
		return nil
	})
}

func (s *RouteStopService) SetNotes(id uint, notes string) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		stop.Notes = notes
		return nil
	})
}

func (s *RouteStopService) SetReasonCode(id uint, reason models.StopReasonCode) (*models.RouteStop, error) {
	return s.save(id, func(stop *models.RouteStop) error {
		stop.ReasonCode = reason
		return nil
	})
}

// Reassign points the stop at a replacement driver. The driver must resolve.
func (s *RouteStopService) Reassign(id, newDriverID uint) (*models.RouteStop, error) {
	var driver models.User
	if err := s.DB.First(&driver, newDriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: driver %d", models.ErrNotFound, newDriverID)
		}
		return nil, err
	}
	return s.save(id, func(stop *models.RouteStop) error {
		stop.ReassignedToDriverID = &driver.ID
		return nil
	})
}

// AssignDriverForRoute stamps the driver onto every stop of a route, used
// when a collector is assigned after stops were generated.
func (s *RouteStopService) AssignDriverForRoute(routeID, driverID uint) error {
	var driver models.User
	if err := s.DB.First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: driver %d", models.ErrNotFound, driverID)
		}
		return err
	}
	return s.DB.Model(&models.RouteStop{}).Where("route_id = ?", routeID).
		Update("driver_id", driver.ID).Error
}

// UpdateStatusWithFollowup is the authoritative status write. Any value may
// be set; there is no transition table. When the write lands the stop in
// MISSED or SKIPPED and the value actually changed, a followup is requested.
// A followup failure is logged and swallowed — the committed status update
// is never rolled back; the reconciliation sweep repairs any gap.
func (s *RouteStopService) UpdateStatusWithFollowup(id uint, status models.StopStatus) (*models.RouteStop, error) {
	stop, err := s.findStop(id)
	if err != nil {
		return nil, err
	}

	previous := stop.Status
	stop.Status = status
	if err := s.DB.Save(stop).Error; err != nil {
		return nil, err
	}

	if (status == models.StopMissed || status == models.StopSkipped) && previous != status {
		reason := models.FollowupMissed
		if status == models.StopSkipped {
			reason = models.FollowupSkipped
		}
		if _, err := s.Followups.CreateFromRouteStop(stop, reason); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"route_stop_id": stop.ID,
				"status":        status,
			}).Error("followup creation failed, status update kept")
		}
	}

	return stop, nil
}

// RecalculatePlannedEtas recomputes every stop's planned arrival from its
// route's collection date and the ward order it belongs to, and persists the
// ones that drifted. Repairs stops created before the schedule arithmetic
// settled. Returns the count updated.
func (s *RouteStopService) RecalculatePlannedEtas() (int, error) {
	var stops []models.RouteStop
	if err := s.DB.Preload("Route").Find(&stops).Error; err != nil {
		return 0, err
	}

	updated := 0
	for i := range stops {
		stop := &stops[i]
		if stop.Route == nil {
			continue
		}

		wardOrder, err := s.wardOrderForStop(stop)
		if err != nil {
			logrus.WithError(err).WithField("route_stop_id", stop.ID).
				Warn("skipping planned ETA recalculation")
			continue
		}

		want := PlannedEta(stop.Route.CollectionDate, wardOrder, stop.StopOrder)
		if stop.PlannedEta != nil && stop.PlannedEta.Equal(want) {
			continue
		}
		stop.PlannedEta = &want
		if err := s.DB.Save(stop).Error; err != nil {
			return updated, err
		}
		updated++
	}

	logrus.WithField("updated", updated).Info("recalculated planned ETAs")
	return updated, nil
}

// wardOrderForStop joins the stop's bin back to the route ward it was
// generated from.
func (s *RouteStopService) wardOrderForStop(stop *models.RouteStop) (int, error) {
	var bin models.Bin
	if err := s.DB.First(&bin, stop.BinID).Error; err != nil {
		return 0, fmt.Errorf("%w: bin %d", models.ErrNotFound, stop.BinID)
	}
	var routeWard models.RouteWard
	err := s.DB.Where("route_id = ? AND ward_number = ?", stop.RouteID, bin.WardNumber).
		First(&routeWard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: route ward for route %d ward %d", models.ErrNotFound, stop.RouteID, bin.WardNumber)
		}
		return 0, err
	}
	return routeWard.WardOrder, nil
}

func (s *RouteStopService) findStop(id uint) (*models.RouteStop, error) {
	var stop models.RouteStop
	if err := s.DB.First(&stop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route stop %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &stop, nil
}

func (s *RouteStopService) save(id uint, mutate func(*models.RouteStop) error) (*models.RouteStop, error) {
	stop, err := s.findStop(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(stop); err != nil {
		return nil, err
	}
	if err := s.DB.Save(stop).Error; err != nil {
		return nil, err
	}
	return stop, nil
}
