package controllers

import (
	"errors"
	"net/http"

	"eco_collect/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// NotFound 404, IllegalState 400, Conflict 409, anything else 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrIllegalState):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("unexpected failure")
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
