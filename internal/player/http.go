package player

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
	router.Post("/players", h.CreatePlayer)
	router.Get("/players/{id}", h.GetPlayer)
	router.Put("/players/{id}", h.UpdatePlayer)
	router.Post("/players/{id}/stats", h.RecordStatLine)
	router.Get("/players/{id}/averages/{stat}", h.GetCategoryAverage)
}

type AverageResponse struct {
	PlayerID int64   `json:"playerId"`
	Stat     string  `json:"stat"`
	Value    float64 `json:"value"`
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var player Player
	if err := json.NewDecoder(r.Body).Decode(&player); err != nil || h.validate.Struct(&player) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating player", "team_id", player.TeamID, "name", player.String())
	if err := h.service.CreatePlayer(r.Context(), &player); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, player)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid player ID")
		return
	}

	player, err := h.service.GetPlayerByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, player)
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid player ID")
		return
	}

	var player Player
	if err := json.NewDecoder(r.Body).Decode(&player); err != nil || h.validate.Struct(&player) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	player.ID = id

	h.logger.InfoContext(r.Context(), "updating player", "player_id", id)
	if err := h.service.UpdatePlayer(r.Context(), &player); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, player)
}

func (h *Handler) RecordStatLine(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid player ID")
		return
	}

	var line StatLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil || h.validate.Struct(&line) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	line.PlayerID = id

	if err := h.service.RecordStatLine(r.Context(), &line); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, line)
}

func (h *Handler) GetCategoryAverage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid player ID")
		return
	}
	stat := chi.URLParam(r, "stat")

	value, err := h.service.CategoryAverage(r.Context(), id, stat)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, AverageResponse{PlayerID: id, Stat: stat, Value: value})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPlayerNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Player not found")
	case errors.Is(err, ErrTeamNotFound):
		httputil.RespondWithError(w, http.StatusBadRequest, "Team does not exist")
	case errors.Is(err, ErrDuplicateStatLine):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownStat):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
