package handler

import (
	"net/http"
	"strconv"

	"github.com/fill11/match-service/internal/service"
	"github.com/labstack/echo/v4"
)

type VenueHandler struct {
	svc service.VenueService
}

func NewVenueHandler(svc service.VenueService) *VenueHandler {
	return &VenueHandler{svc: svc}
}

func (h *VenueHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/venues/nearby", h.Nearby)
}

// Nearby handles GET /venues/nearby?lat=&long=&radius= (radius in km).
func (h *VenueHandler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat and long are required")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("long"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat and long are required")
	}

	radius := service.DefaultNearbyRadiusKm
	if s := c.QueryParam("radius"); s != "" {
		radius, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "radius must be a number")
		}
	}

	venues, err := h.svc.Nearby(c.Request().Context(), lat, lon, radius)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, venues)
}
