package services

import (
	"errors"
	"fmt"
	"time"

	"eco_collect/internal/models"

	"gorm.io/gorm"
)

// InterfaceRouteService owns Route records and their cascading deletion.
type InterfaceRouteService interface {
	CreateRoute(input CreateRouteInput) (*models.Route, error)
	GetRouteByID(id uint) (*models.Route, error)
	ListRoutes() ([]models.Route, error)
	ListRoutesByDispatcher(dispatcherID uint) ([]models.Route, error)
	ListRoutesByCollector(collectorID uint) ([]models.Route, error)
	ListRoutesByDate(date time.Time) ([]models.Route, error)
	ListRoutesByStatus(status models.RouteStatus) ([]models.Route, error)
	UpdateRouteStatus(id uint, status models.RouteStatus) (*models.Route, error)
	AssignCollector(routeID, collectorID uint) (*models.Route, error)
	AssignTruck(routeID, truckID uint) (*models.Route, error)
	DeleteRoute(id uint) error
}

type CreateRouteInput struct {
	RouteName      string
	ZoneID         uint
	CollectionDate time.Time
	DispatcherID   uint
	TruckID        *uint
	CollectorID    *uint
}

type RouteService struct {
	DB *gorm.DB
}

func NewRouteService(db *gorm.DB) InterfaceRouteService {
	return &RouteService{DB: db}
}

func (s *RouteService) CreateRoute(input CreateRouteInput) (*models.Route, error) {
	var zone models.Zone
	if err := s.DB.First(&zone, input.ZoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: zone %d", models.ErrNotFound, input.ZoneID)
		}
		return nil, err
	}

	var dispatcher models.User
	if err := s.DB.First(&dispatcher, input.DispatcherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: dispatcher %d", models.ErrNotFound, input.DispatcherID)
		}
		return nil, err
	}

	route := models.Route{
		RouteName:      input.RouteName,
		ZoneID:         zone.ID,
		CollectionDate: input.CollectionDate,
		DispatcherID:   dispatcher.ID,
		Status:         models.RoutePending,
	}

	if input.TruckID != nil {
		var truck models.Truck
		if err := s.DB.First(&truck, *input.TruckID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: truck %d", models.ErrNotFound, *input.TruckID)
			}
			return nil, err
		}
		route.TruckID = input.TruckID
	}

	if input.CollectorID != nil {
		var collector models.User
		if err := s.DB.First(&collector, *input.CollectorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: collector %d", models.ErrNotFound, *input.CollectorID)
			}
			return nil, err
		}
		route.CollectorID = input.CollectorID
	}

	if err := s.DB.Create(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (s *RouteService) GetRouteByID(id uint) (*models.Route, error) {
	var route models.Route
	err := s.DB.Preload("Zone").Preload("Truck").Preload("RouteWards").First(&route, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &route, nil
}

func (s *RouteService) ListRoutes() ([]models.Route, error) {
	var routes []models.Route
	if err := s.DB.Preload("RouteWards").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *RouteService) ListRoutesByDispatcher(dispatcherID uint) ([]models.Route, error) {
	var routes []models.Route
	if err := s.DB.Where("dispatcher_id = ?", dispatcherID).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *RouteService) ListRoutesByCollector(collectorID uint) ([]models.Route, error) {
	var routes []models.Route
	if err := s.DB.Where("collector_id = ?", collectorID).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *RouteService) ListRoutesByDate(date time.Time) ([]models.Route, error) {
	var routes []models.Route
	if err := s.DB.Where("collection_date = ?", date.Format("2006-01-02")).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *RouteService) ListRoutesByStatus(status models.RouteStatus) ([]models.Route, error) {
	var routes []models.Route
	if err := s.DB.Where("status = ?", status).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// UpdateRouteStatus is a plain field setter. Route.status carries no
// transition rules.
func (s *RouteService) UpdateRouteStatus(id uint, status models.RouteStatus) (*models.Route, error) {
	route, err := s.findRoute(id)
	if err != nil {
		return nil, err
	}
	route.Status = status
	if err := s.DB.Save(route).Error; err != nil {
		return nil, err
	}
	return route, nil
}

func (s *RouteService) AssignCollector(routeID, collectorID uint) (*models.Route, error) {
	route, err := s.findRoute(routeID)
	if err != nil {
		return nil, err
	}
	var collector models.User
	if err := s.DB.First(&collector, collectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: collector %d", models.ErrNotFound, collectorID)
		}
		return nil, err
	}
	route.CollectorID = &collector.ID
	if err := s.DB.Save(route).Error; err != nil {
		return nil, err
	}
	return route, nil
}

func (s *RouteService) AssignTruck(routeID, truckID uint) (*models.Route, error) {
	route, err := s.findRoute(routeID)
	if err != nil {
		return nil, err
	}
	var truck models.Truck
	if err := s.DB.First(&truck, truckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: truck %d", models.ErrNotFound, truckID)
		}
		return nil, err
	}
	route.TruckID = &truck.ID
	if err := s.DB.Save(route).Error; err != nil {
		return nil, err
	}
	return route, nil
}

// DeleteRoute removes the route's stops, then its wards, then the route row,
// in one transaction so a failure midway never leaves orphaned children.
func (s *RouteService) DeleteRoute(id uint) error {
	route, err := s.findRoute(id)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.RouteStop{}).Error; err != nil {
			return err
		}
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.RouteWard{}).Error; err != nil {
			return err
		}
		return tx.Delete(route).Error
	})
}

func (s *RouteService) findRoute(id uint) (*models.Route, error) {
	var route models.Route
	if err := s.DB.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: route %d", models.ErrNotFound, id)
		}
		return nil, err
	}
	return &route, nil
}
