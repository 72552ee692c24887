package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/fill11/match-service/internal/dto"
	"github.com/fill11/match-service/internal/middleware"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/fill11/match-service/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// RegisterRoutes mounts the match routes on an authenticated group.
// limited wraps the money and GPS endpoints; pass nil for none.
func (h *MatchHandler) RegisterRoutes(g *echo.Group, limited echo.MiddlewareFunc) {
	var extra []echo.MiddlewareFunc
	if limited != nil {
		extra = append(extra, limited)
	}

	matches := g.Group("/matches")
	matches.POST("", h.CreateMatch)
	matches.GET("", h.ListMatches)
	matches.GET("/:id", h.GetMatch)
	matches.POST("/:id/confirm", h.Confirm)
	matches.POST("/:id/start", h.Start)
	matches.POST("/:id/vacancies", h.AddVacancy)
	matches.GET("/:id/vacancies", h.ListVacancies)
	matches.POST("/:id/join", h.Join, extra...)
	matches.POST("/:id/checkin", h.CheckIn, extra...)
	matches.POST("/:id/cancel", h.Cancel)
	matches.POST("/:id/scorecard", h.SubmitScorecard)
	matches.GET("/:id/participation", h.Participation)
}

func parseMatchID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid match id")
	}
	return id, nil
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	id := middleware.GetUserID(c)
	if id == uuid.Nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func (h *MatchHandler) CreateMatch(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateMatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VenueID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "venue_id is required")
	}

	match, err := h.svc.CreateMatch(c.Request().Context(), service.CreateMatchInput{
		CaptainID:      userID,
		VenueID:        req.VenueID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalSpots:     req.TotalSpots,
		MaxJoinAllowed: req.MaxJoinAllowed,
		PricePerPlayer: req.PricePerPlayer,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToMatchResponse(match))
}

// ListMatches handles GET /matches?upcoming=&ground_status=&venue_id=.
func (h *MatchHandler) ListMatches(c echo.Context) error {
	var in service.ListMatchesInput
	if s := c.QueryParam("upcoming"); s != "" {
		upcoming, err := strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "upcoming must be a boolean")
		}
		in.Upcoming = upcoming
	}
	if s := c.QueryParam("ground_status"); s != "" {
		gs := models.GroundStatus(s)
		in.GroundStatus = &gs
	}
	if s := c.QueryParam("venue_id"); s != "" {
		venueID, err := uuid.Parse(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid venue_id")
		}
		in.VenueID = &venueID
	}

	matches, err := h.svc.ListMatches(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.MatchResponse, len(matches))
	for i := range matches {
		resp[i] = dto.ToMatchResponse(&matches[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *MatchHandler) GetMatch(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}

	match, err := h.svc.GetMatch(c.Request().Context(), matchID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToMatchResponse(match))
}

func (h *MatchHandler) Confirm(c echo.Context) error {
	return h.advance(c, h.svc.Confirm)
}

func (h *MatchHandler) Start(c echo.Context) error {
	return h.advance(c, h.svc.Start)
}

func (h *MatchHandler) advance(c echo.Context, fn func(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error)) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	match, err := fn(c.Request().Context(), matchID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToMatchResponse(match))
}

func (h *MatchHandler) AddVacancy(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.AddVacancyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	vacancy, err := h.svc.AddVacancy(c.Request().Context(), matchID, userID, service.AddVacancyInput{
		Role:        models.PlayerRole(req.Role),
		CountNeeded: req.CountNeeded,
		CostPerHead: req.CostPerHead,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToVacancyResponse(vacancy))
}

func (h *MatchHandler) ListVacancies(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}

	var filter repository.VacancyFilter
	if s := c.QueryParam("status"); s != "" {
		vs := models.VacancyStatus(s)
		filter.Status = &vs
	}
	if s := c.QueryParam("only_open"); s != "" {
		onlyOpen, err := strconv.ParseBool(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "only_open must be a boolean")
		}
		filter.OnlyOpen = onlyOpen
	}

	vacancies, err := h.svc.ListVacancies(c.Request().Context(), matchID, filter)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.VacancyResponse, len(vacancies))
	for i := range vacancies {
		resp[i] = dto.ToVacancyResponse(&vacancies[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *MatchHandler) Join(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.JoinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VacancyID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "vacancy_id is required")
	}

	result, err := h.svc.Join(c.Request().Context(), matchID, userID, req.VacancyID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToJoinResponse(result))
}

func (h *MatchHandler) CheckIn(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CheckinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserLat == nil || req.UserLong == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_lat and user_long are required")
	}

	result, err := h.svc.CheckIn(c.Request().Context(), matchID, userID, *req.UserLat, *req.UserLong)
	if err != nil {
		return toHTTPError(err)
	}

	distance := round2(result.DistanceMeters)
	if result.Success {
		return c.JSON(http.StatusOK, dto.CheckinResponse{
			Success:        true,
			Message:        "Check-in successful",
			DistanceMeters: distance,
			CheckIn:        *result.Checkin,
		})
	}

	needed := round2(result.ShortfallMeters)
	return c.JSON(http.StatusBadRequest, dto.CheckinResponse{
		Success:        false,
		Message:        fmt.Sprintf("You need to be within %g meters. You are %.2f meters away.", result.RadiusMeters, distance),
		DistanceMeters: distance,
		DistanceNeeded: &needed,
		CheckIn:        *result.Checkin,
	})
}

func (h *MatchHandler) Cancel(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	result, err := h.svc.Cancel(c.Request().Context(), matchID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.CancelResponse{
		Message:          "Match cancelled",
		RefundsProcessed: result.RefundsProcessed,
		VacanciesExpired: result.VacanciesExpired,
	})
}

func (h *MatchHandler) SubmitScorecard(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ScorecardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := service.ScorecardInput{
		WinningTeamName: req.WinningTeamName,
		SummaryText:     req.SummaryText,
	}
	for _, ps := range req.PlayerStats {
		in.PlayerStats = append(in.PlayerStats, service.PlayerStatInput{
			UserID:  ps.UserID,
			Runs:    ps.Runs,
			Wickets: ps.Wickets,
			Catches: ps.Catches,
		})
	}

	result, err := h.svc.SubmitScorecard(c.Request().Context(), matchID, userID, in)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ScorecardResponse{
		ScorecardID:     result.Scorecard.ID,
		MatchID:         matchID,
		WinningTeamName: result.Scorecard.WinningTeamName,
		Released:        result.Released,
	})
}

func (h *MatchHandler) Participation(c echo.Context) error {
	matchID, err := parseMatchID(c)
	if err != nil {
		return err
	}
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Participation(c.Request().Context(), matchID, userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToParticipationResponse(p))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
