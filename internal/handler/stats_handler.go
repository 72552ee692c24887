package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type StatsHandler struct {
	repo repository.UserStatsRepository
}

func NewStatsHandler(repo repository.UserStatsRepository) *StatsHandler {
	return &StatsHandler{repo: repo}
}

func (h *StatsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/me/stats", h.Mine)
	g.GET("/users/leaderboard", h.Leaderboard)
}

const maxLeaderboardSize = 50

// Mine returns the caller's career totals. A user with no scorecards gets zeros.
func (h *StatsHandler) Mine(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.repo.FindByUserID(c.Request().Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusOK, models.UserStats{UserID: userID})
	}
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, stats)
}

// Leaderboard handles GET /users/leaderboard?limit= (at most 50).
func (h *StatsHandler) Leaderboard(c echo.Context) error {
	limit := maxLeaderboardSize
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxLeaderboardSize)
	}

	rows, err := h.repo.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, rows)
}
