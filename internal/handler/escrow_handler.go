package handler

import (
	"net/http"

	"github.com/fill11/match-service/internal/dto"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/service"
	"github.com/labstack/echo/v4"
)

type EscrowHandler struct {
	svc service.EscrowEngine
}

func NewEscrowHandler(svc service.EscrowEngine) *EscrowHandler {
	return &EscrowHandler{svc: svc}
}

func (h *EscrowHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/escrows", h.ListMine)
}

// ListMine returns the caller's escrows, newest first, optionally filtered by ?status=.
func (h *EscrowHandler) ListMine(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var status *models.EscrowStatus
	if s := c.QueryParam("status"); s != "" {
		es := models.EscrowStatus(s)
		switch es {
		case models.EscrowStatusHeld, models.EscrowStatusReleased, models.EscrowStatusRefunded:
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "unknown escrow status")
		}
		status = &es
	}

	escrows, err := h.svc.ListByPayer(c.Request().Context(), userID, status)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.EscrowResponse, len(escrows))
	for i := range escrows {
		resp[i] = dto.ToEscrowResponse(&escrows[i])
	}

	return c.JSON(http.StatusOK, resp)
}
