package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"shule_transit/internal/middleware"
	"shule_transit/internal/notify"
)

// EventHub is the broadcast hub admin dashboards subscribe to, wired in main.
var EventHub *notify.Hub

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// claimsFromQueryToken validates the JWT passed as a query parameter
// (browsers cannot set headers on WebSocket dials) and returns the user id
// and role it carries.
func claimsFromQueryToken(c *gin.Context) (uint, string, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		logrus.Warn("WebSocket connection attempt: Missing token query parameter.")
		return 0, "", errors.New("missing authentication token")
	}

	token, err := middleware.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", errors.New("token missing user_id claim")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return 0, "", errors.New("token missing role claim")
	}
	return uint(userIDFloat), role, nil
}

// HandleScheduleEventsWebSocket upgrades an admin connection and streams
// schedule events, optionally filtered to one route via ?route_id=.
func HandleScheduleEventsWebSocket(c *gin.Context) {
	userID, role, err := claimsFromQueryToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators may subscribe to schedule events"})
		return
	}

	var routeID uint
	if v := c.Query("route_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route_id"})
			return
		}
		routeID = uint(parsed)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade schedule events connection.")
		return
	}

	EventHub.Register(routeID, conn)
	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"route_id": routeID,
	}).Info("Admin subscribed to schedule events.")

	// Drain (and discard) client messages so pings and close frames are
	// processed; unregister when the peer goes away.
	go func() {
		defer func() {
			EventHub.Unregister(routeID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
