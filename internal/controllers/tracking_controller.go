package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eco_collect/internal/config"
	"eco_collect/internal/middleware"
	"eco_collect/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// truckPing is the JSON a collector's app sends while driving a route.
type truckPing struct {
	CollectorID uint      `json:"collector_id"`
	RouteID     uint      `json:"route_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Speed       float64   `json:"speed"`   // km/h
	Bearing     float64   `json:"bearing"` // degrees
	Timestamp   time.Time `json:"timestamp"`
}

// TrackingHub fans truck positions out to dispatch dashboards watching a
// route. Connections register per route ID.
type TrackingHub struct {
	routeClients map[uint]map[*websocket.Conn]bool
	broadcast    chan trackEvent
	mu           sync.Mutex
}

type trackEvent struct {
	RouteID uint
	Payload map[string]interface{}
}

func NewTrackingHub() *TrackingHub {
	hub := &TrackingHub{
		routeClients: make(map[uint]map[*websocket.Conn]bool),
		broadcast:    make(chan trackEvent, 100),
	}
	go hub.run()
	return hub
}

func (h *TrackingHub) run() {
	for ev := range h.broadcast {
		h.mu.Lock()
		for conn := range h.routeClients[ev.RouteID] {
			if err := conn.WriteJSON(ev.Payload); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					h.unregisterLocked(ev.RouteID, conn)
				} else {
					logrus.WithError(err).WithField("route_id", ev.RouteID).
						Warn("failed to push truck position to watcher")
				}
			}
		}
		h.mu.Unlock()
	}
}

func (h *TrackingHub) Register(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.routeClients[routeID]; !ok {
		h.routeClients[routeID] = make(map[*websocket.Conn]bool)
	}
	h.routeClients[routeID][conn] = true
	logrus.WithField("route_id", routeID).Info("tracking watcher registered")
}

func (h *TrackingHub) Unregister(routeID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(routeID, conn)
}

func (h *TrackingHub) unregisterLocked(routeID uint, conn *websocket.Conn) {
	if clients, ok := h.routeClients[routeID]; ok {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(h.routeClients, routeID)
		}
	}
}

func (h *TrackingHub) Publish(routeID uint, payload map[string]interface{}) {
	select {
	case h.broadcast <- trackEvent{RouteID: routeID, Payload: payload}:
	default:
		logrus.Warn("tracking broadcast channel full, dropping position")
	}
}

var trackingHub = NewTrackingHub()

// authenticateTracking validates the token query parameter and returns the
// caller's identity. Collectors push positions; dispatchers and admins watch.
func authenticateTracking(c *gin.Context) (userID uint, role string, err error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		return 0, "", errors.New("missing authentication token")
	}
	token, err := middleware.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	idFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", errors.New("token missing user_id claim")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return 0, "", errors.New("token missing role claim")
	}
	return uint(idFloat), roleStr, nil
}

// HandleTrackingWebSocket is the handler behind /ws/track. Collectors send
// truck pings; dispatchers and admins connect with a route_id query parameter
// and receive the route's live positions.
func HandleTrackingWebSocket(c *gin.Context) {
	userID, role, err := authenticateTracking(c)
	if err != nil {
		logrus.WithError(err).Warn("tracking websocket authentication failed")
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to upgrade tracking websocket")
		return
	}
	defer conn.Close()

	switch role {
	case "collector":
		handleCollectorFeed(conn, userID)
	case "dispatcher", "admin":
		routeID, err := strconv.ParseUint(c.Query("route_id"), 10, 32)
		if err != nil {
			conn.WriteJSON(gin.H{"error": "route_id query parameter required"})
			return
		}
		handleWatcherFeed(conn, uint(routeID))
	default:
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized role"))
	}
}

// handleCollectorFeed reads truck pings from a collector until the socket
// closes.
func handleCollectorFeed(conn *websocket.Conn, collectorID uint) {
	logrus.WithField("collector_id", collectorID).Info("collector tracking feed established")
	for {
		var ping truckPing
		if err := conn.ReadJSON(&ping); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("collector_id", collectorID).Info("collector tracking feed closed")
			} else {
				logrus.WithError(err).WithField("collector_id", collectorID).
					Error("error reading truck ping")
			}
			return
		}
		processTruckPing(conn, ping, collectorID)
	}
}

func handleWatcherFeed(conn *websocket.Conn, routeID uint) {
	trackingHub.Register(routeID, conn)
	defer trackingHub.Unregister(routeID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		// Watchers only listen.
	}
}

// processTruckPing validates, thins and persists one ping, then fans it out
// to the route's watchers.
func processTruckPing(conn *websocket.Conn, ping truckPing, authenticatedID uint) {
	if ping.CollectorID != authenticatedID {
		logrus.WithFields(logrus.Fields{
			"authenticated_id": authenticatedID,
			"payload_id":       ping.CollectorID,
		}).Warn("collector attempted to send position for another collector, denying")
		conn.WriteJSON(gin.H{"error": "unauthorized position update"})
		return
	}
	if ping.Timestamp.IsZero() {
		ping.Timestamp = time.Now()
	}

	var last models.TruckLocation
	err := config.DB.Where("collector_id = ?", ping.CollectorID).
		Order("created_at desc").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("database error fetching last truck location")
		conn.WriteJSON(gin.H{"error": "could not read last position"})
		return
	}

	if last.ID != 0 && !positionSignificant(last, ping) {
		conn.WriteJSON(gin.H{"status": "received"})
		return
	}

	record := models.TruckLocation{
		CollectorID: ping.CollectorID,
		RouteID:     ping.RouteID,
		Latitude:    ping.Latitude,
		Longitude:   ping.Longitude,
		Speed:       ping.Speed,
		Bearing:     ping.Bearing,
		Timestamp:   ping.Timestamp,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		logrus.WithError(err).WithField("collector_id", ping.CollectorID).
			Error("failed to save truck location")
		conn.WriteJSON(gin.H{"error": "failed to save position"})
		return
	}

	conn.WriteJSON(gin.H{"status": "saved", "sequence_id": record.ID})
	trackingHub.Publish(ping.RouteID, map[string]interface{}{
		"collector_id": ping.CollectorID,
		"route_id":     ping.RouteID,
		"latitude":     ping.Latitude,
		"longitude":    ping.Longitude,
		"speed":        ping.Speed,
		"bearing":      ping.Bearing,
		"timestamp":    ping.Timestamp.Format(time.RFC3339Nano),
		"sequence_id":  record.ID,
	})
}

// positionSignificant thins the ping stream: save on 10m of movement or 60s
// of silence, drop the rest.
func positionSignificant(last models.TruckLocation, ping truckPing) bool {
	const minDistanceMeters = 10.0
	if haversineMeters(last.Latitude, last.Longitude, ping.Latitude, ping.Longitude) >= minDistanceMeters {
		return true
	}
	return ping.Timestamp.Sub(last.Timestamp) >= 60*time.Second
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ListTruckLocations returns the recent position trail for a route.
func ListTruckLocations(c *gin.Context) {
	routeID, err := parseIDParam(c, "routeId")
	if err != nil {
		return
	}
	var locations []models.TruckLocation
	err = config.DB.Where("route_id = ?", routeID).
		Order("created_at desc").Limit(100).Find(&locations).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, "truck locations retrieved", locations)
}
