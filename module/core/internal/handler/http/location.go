package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type locationService interface {
	GetLatestForPLWD(ctx context.Context, plwdID string) (*domain.LocationPing, error)
}

type locationResponse struct {
	WatchID   string  `json:"watch_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type LocationHandler struct {
	locationSvc locationService
}

func NewLocationHandler(locationSvc locationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

func (h *LocationHandler) Register(r *gin.RouterGroup) {
	r.GET("/plwds/:plwd_id/location", h.GetLatestLocation)
}

func (h *LocationHandler) GetLatestLocation(c *gin.Context) {
	ping, err := h.locationSvc.GetLatestForPLWD(c.Request.Context(), c.Param("plwd_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch location"})
		return
	}

	c.JSON(http.StatusOK, toLocationResponse(ping))
}

func toLocationResponse(p *domain.LocationPing) locationResponse {
	return locationResponse{
		WatchID:   p.WatchID,
		Latitude:  p.Location.Lat,
		Longitude: p.Location.Lng,
		Timestamp: p.Timestamp.Unix(),
	}
}
