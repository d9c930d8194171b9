package game

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"team-service/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/games", h.CreateGame)
	router.Get("/games/{id}", h.GetGame)
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || h.validate.Struct(&req) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	game, err := req.Game()
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	h.logger.InfoContext(r.Context(), "scheduling game",
		"home_team_id", game.HomeTeamID,
		"away_team_id", game.AwayTeamID,
		"date", req.Date,
	)
	if err := h.service.CreateGame(r.Context(), game); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, game)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	game, err := h.service.GetGameByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, game)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, ErrTeamNotFound):
		httputil.RespondWithError(w, http.StatusBadRequest, "Team does not exist")
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
