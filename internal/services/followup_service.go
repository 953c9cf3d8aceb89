package services

import (
	"errors"
	"fmt"
	"time"

	"eco_collect/internal/models"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InterfaceFollowupService drives the followup pickup state machine:
// PENDING -> ASSIGNED -> IN_PROGRESS -> DONE, with CANCELLED reachable from
// any open state. Creation is idempotent per source stop.
type InterfaceFollowupService interface {
	CreateFromRouteStop(stop *models.RouteStop, reason models.FollowupReasonCode) (*models.FollowupPickup, error)
	GetByID(id uint) (*models.FollowupPickup, error)
	List(filter FollowupFilter) ([]models.FollowupPickup, error)
	GetPending() ([]models.FollowupPickup, error)
	GetOverdue() ([]models.FollowupPickup, error)
	Assign(id, driverID, truckID uint) (*models.FollowupPickup, error)
	CompleteAssignment(id, driverID, truckID uint, collectionDate time.Time) (*models.FollowupPickup, error)
	MarkCompleted(id uint, notes, photoURL string) (*models.FollowupPickup, error)
	Cancel(id uint, reason string) (*models.FollowupPickup, error)
	DetectMissedSkippedRouteStops() (int, error)
	UpdatePriorityAndReasonCodes() (int, error)
}

// FollowupFilter narrows List. Zero values mean "no filter".
type FollowupFilter struct {
	Status   models.FollowupStatus
	WardID   uint
	DriverID uint
}

type FollowupService struct {
	DB *gorm.DB
}

func NewFollowupService(db *gorm.DB) InterfaceFollowupService {
	return &FollowupService{DB: db}
}

// isUniqueViolation classifies duplicate-key failures from the unique index
// on source_route_stop_id. Covers gorm's translated error and the raw
// postgres 23505 code.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// CreateFromRouteStop builds a followup for a failed stop. Due date and
// priority derive from the reason code. At most one followup can exist per
// source stop: a duplicate insert is resolved to the existing row and
// reported as a benign no-op, never as an error to the caller.
func (s *FollowupService) CreateFromRouteStop(stop *models.RouteStop, reason models.FollowupReasonCode) (*models.FollowupPickup, error) {
	if existing, err := s.findBySourceStop(stop.ID); err == nil {
		logrus.WithFields(logrus.Fields{
			"route_stop_id": stop.ID,
			"followup_id":   existing.ID,
		}).Info("followup already exists for route stop, skipping creation")
		return existing, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	followup := models.FollowupPickup{
		SourceRouteStopID: stop.ID,
		BinID:             stop.BinID,
		WasteType:         s.wasteTypeForBin(stop.BinID),
		WardID:            s.wardIDForStop(stop),
		OriginalDriverID:  stop.DriverID,
		Priority:          models.FollowupPriorityFor(reason),
		DueAt:             models.FollowupDueAt(reason, now),
		Status:            models.FollowupPending,
		ReasonCode:        reason,
	}

	if err := s.DB.Create(&followup).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent creator; theirs wins.
			return s.findBySourceStop(stop.ID)
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"followup_id":   followup.ID,
		"route_stop_id": stop.ID,
		"reason_code":   reason,
		"priority":      followup.Priority,
		"due_at":        followup.DueAt,
	}).Info("created followup pickup")

	return &followup, nil
}

func (s *FollowupService) GetByID(id uint) (*models.FollowupPickup, error) {
	var followup models.FollowupPickup
	err := s.DB.Preload("SourceRouteStop").Preload("Ward").
		Preload("OriginalDriver").Preload("NewAssignedDriver").Preload("AssignedTruck").
		First(&followup, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: followup %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &followup, nil
}

func (s *FollowupService) List(filter FollowupFilter) ([]models.FollowupPickup, error) {
	q := s.DB.Model(&models.FollowupPickup{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.WardID != 0 {
		q = q.Where("ward_id = ?", filter.WardID)
	}
	if filter.DriverID != 0 {
		q = q.Where("original_driver_id = ? OR new_assigned_driver_id = ?", filter.DriverID, filter.DriverID)
	}
	var followups []models.FollowupPickup
	if err := q.Order("due_at").Find(&followups).Error; err != nil {
		return nil, err
	}
	return followups, nil
}

func (s *FollowupService) GetPending() ([]models.FollowupPickup, error) {
	return s.List(FollowupFilter{Status: models.FollowupPending})
}

// GetOverdue returns pending followups whose due date has passed.
func (s *FollowupService) GetOverdue() ([]models.FollowupPickup, error) {
	var followups []models.FollowupPickup
	err := s.DB.Where("status = ? AND due_at < ?", models.FollowupPending, time.Now()).
		Order("due_at").Find(&followups).Error
	if err != nil {
		return nil, err
	}
	return followups, nil
}

// Assign sets driver and truck on a pending followup. Any other state is an
// illegal-state error.
func (s *FollowupService) Assign(id, driverID, truckID uint) (*models.FollowupPickup, error) {
	followup, err := s.findByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDriverAndTruck(s.DB, driverID, truckID); err != nil {
		return nil, err
	}
	if err := followup.Assign(driverID, truckID); err != nil {
		return nil, err
	}
	if err := s.DB.Save(followup).Error; err != nil {
		return nil, err
	}
	return followup, nil
}

// CompleteAssignment atomically assigns driver and truck, advances the
// followup to IN_PROGRESS, and recycles the originating stop into a new
// planned visit: reassigned driver set, status back to PENDING, planned ETA
// at the new collection date.
func (s *FollowupService) CompleteAssignment(id, driverID, truckID uint, collectionDate time.Time) (*models.FollowupPickup, error) {
	followup, err := s.findByID(id)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.checkDriverAndTruck(tx, driverID, truckID); err != nil {
			return err
		}
		if err := followup.Assign(driverID, truckID); err != nil {
			return err
		}
		if err := followup.StartProgress(); err != nil {
			return err
		}
		if err := tx.Save(followup).Error; err != nil {
			return err
		}

		var stop models.RouteStop
		if err := tx.First(&stop, followup.SourceRouteStopID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: route stop %d", models.ErrNotFound, followup.SourceRouteStopID)
			}
			return err
		}
		stop.ReassignedToDriverID = &driverID
		stop.Status = models.StopPending
		stop.PlannedEta = &collectionDate
		return tx.Save(&stop).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"followup_id":   followup.ID,
		"route_stop_id": followup.SourceRouteStopID,
		"driver_id":     driverID,
		"truck_id":      truckID,
	}).Info("completed followup assignment, source stop rescheduled")

	return followup, nil
}

func (s *FollowupService) MarkCompleted(id uint, notes, photoURL string) (*models.FollowupPickup, error) {
	followup, err := s.findByID(id)
	if err != nil {
		return nil, err
	}
	if err := followup.Complete(notes); err != nil {
		return nil, err
	}
	if err := s.DB.Save(followup).Error; err != nil {
		return nil, err
	}
	if photoURL != "" {
		// Completion photo lands on the source stop alongside the visit record.
		s.DB.Model(&models.RouteStop{}).Where("id = ?", followup.SourceRouteStopID).
			Update("photo_url", photoURL)
	}
	return followup, nil
}

func (s *FollowupService) Cancel(id uint, reason string) (*models.FollowupPickup, error) {
	followup, err := s.findByID(id)
	if err != nil {
		return nil, err
	}
	if err := followup.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.DB.Save(followup).Error; err != nil {
		return nil, err
	}
	return followup, nil
}

// DetectMissedSkippedRouteStops sweeps all stops sitting in MISSED or
// SKIPPED and creates the followup any of them is missing. Safe to re-run
// and to run concurrently with live traffic: duplicates are swallowed by the
// unique index on the source stop. Returns how many followups were created.
func (s *FollowupService) DetectMissedSkippedRouteStops() (int, error) {
	var stops []models.RouteStop
	err := s.DB.Where("status IN ?", []models.StopStatus{models.StopMissed, models.StopSkipped}).
		Find(&stops).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range stops {
		stop := &stops[i]
		if _, err := s.findBySourceStop(stop.ID); err == nil {
			continue
		} else if !errors.Is(err, models.ErrNotFound) {
			return created, err
		}

		reason := models.FollowupMissed
		if stop.Status == models.StopSkipped {
			reason = models.FollowupSkipped
		}
		if _, err := s.CreateFromRouteStop(stop, reason); err != nil {
			logrus.WithError(err).WithField("route_stop_id", stop.ID).
				Error("reconciliation failed to create followup")
			continue
		}
		created++
	}

	logrus.WithField("created", created).Info("reconciled missed/skipped route stops")
	return created, nil
}

// UpdatePriorityAndReasonCodes re-derives priority from each followup's
// stored reason code and persists any drift. Returns the count mutated.
func (s *FollowupService) UpdatePriorityAndReasonCodes() (int, error) {
	var followups []models.FollowupPickup
	if err := s.DB.Find(&followups).Error; err != nil {
		return 0, err
	}

	updated := 0
	for i := range followups {
		f := &followups[i]
		want := models.FollowupPriorityFor(f.ReasonCode)
		if f.Priority == want {
			continue
		}
		f.Priority = want
		if err := s.DB.Save(f).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *FollowupService) findByID(id uint) (*models.FollowupPickup, error) {
	var followup models.FollowupPickup
	if err := s.DB.First(&followup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: followup %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &followup, nil
}

func (s *FollowupService) findBySourceStop(stopID uint) (*models.FollowupPickup, error) {
	var followup models.FollowupPickup
	err := s.DB.Where("source_route_stop_id = ?", stopID).First(&followup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: followup for route stop %d", models.ErrNotFound, stopID)
		}
		return nil, err
	}
	return &followup, nil
}

func (s *FollowupService) checkDriverAndTruck(db *gorm.DB, driverID, truckID uint) error {
	var driver models.User
	if err := db.First(&driver, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: driver %d", models.ErrNotFound, driverID)
		}
		return err
	}
	var truck models.Truck
	if err := db.First(&truck, truckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: truck %d", models.ErrNotFound, truckID)
		}
		return err
	}
	return nil
}

// wasteTypeForBin reads the bin's registered waste type, defaulting to
// General when the bin is not in the registry.
func (s *FollowupService) wasteTypeForBin(binID uint) models.WasteType {
	var bin models.Bin
	if err := s.DB.First(&bin, binID).Error; err != nil {
		return models.WasteGeneral
	}
	if bin.WasteType == "" {
		return models.WasteGeneral
	}
	return bin.WasteType
}

// wardIDForStop resolves the ward the stop's bin sits in, via the bin's ward
// number and the route's zone. Best effort; nil when the chain breaks.
func (s *FollowupService) wardIDForStop(stop *models.RouteStop) *uint {
	var bin models.Bin
	if err := s.DB.First(&bin, stop.BinID).Error; err != nil {
		return nil
	}
	var route models.Route
	if err := s.DB.First(&route, stop.RouteID).Error; err != nil {
		return nil
	}
	var ward models.Ward
	err := s.DB.Where("zone_id = ? AND ward_number = ?", route.ZoneID, bin.WardNumber).
		First(&ward).Error
	if err != nil {
		return nil
	}
	return &ward.ID
}
