package team

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"team-service/internal/httputil"
	"team-service/internal/player"

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

// RegisterRoutes mounts the JSON API. Call it inside the /api route group.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/teams", h.CreateTeam)
	router.Get("/teams", h.GetAllTeams)
	router.Get("/teams/{id}", h.GetTeam)
	router.Put("/teams/{id}", h.UpdateTeam)
	router.Delete("/teams/{id}", h.DeleteTeam)

	router.Get("/teams/{id}/players", h.GetPlayers)
	router.Get("/teams/{id}/players/count", h.CountPlayers)
	router.Get("/teams/{id}/captain", h.GetCaptain)
	router.Get("/teams/{id}/leaders/{stat}", h.GetAverageLeader)
	router.Get("/teams/{id}/games", h.GetGames)
}

// RegisterPageRoutes mounts the team_page route that AbsoluteURL points at.
func (h *Handler) RegisterPageRoutes(router chi.Router) {
	router.Get(PagePrefix+"{name}", h.GetTeamPage)
}

// Response is a team as served to clients.
type Response struct {
	Team
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
}

func newResponse(t *Team) Response {
	return Response{Team: *t, DisplayName: t.String(), URL: t.AbsoluteURL()}
}

type CountResponse struct {
	TeamID int64 `json:"teamId"`
	Count  int   `json:"count"`
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var team Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil || h.validate.Struct(&team) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "creating team", "team", team.String())
	if err := h.service.CreateTeam(r.Context(), &team); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", team.AbsoluteURL())
	httputil.RespondWithJSON(w, http.StatusCreated, newResponse(&team))
}

func (h *Handler) GetAllTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.GetAllTeams(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	response := make([]Response, len(teams))
	for i := range teams {
		response[i] = newResponse(&teams[i])
	}
	httputil.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	team, err := h.service.GetTeamByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, newResponse(team))
}

func (h *Handler) GetTeamPage(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid team name")
		return
	}

	team, err := h.service.GetTeamByURLName(r.Context(), name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, newResponse(team))
}

// pathParam decodes a URL parameter exactly once. chi matches on RawPath when
// it is set (names with an escaped "/"), leaving params escaped; otherwise
// params come from the already decoded Path.
func pathParam(r *http.Request, key string) (string, error) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	var team Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil || h.validate.Struct(&team) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	team.ID = id

	h.logger.InfoContext(r.Context(), "updating team", "team_id", id, "team", team.String())
	if err := h.service.UpdateTeam(r.Context(), &team); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, newResponse(&team))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting team", "team_id", id)
	if err := h.service.DeleteTeam(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	players, err := h.service.Players(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, players)
}

func (h *Handler) CountPlayers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	count, err := h.service.CountPlayers(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, CountResponse{TeamID: id, Count: count})
}

func (h *Handler) GetCaptain(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	captain, err := h.service.Captain(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, captain)
}

func (h *Handler) GetAverageLeader(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	leader, err := h.service.AverageLeader(r.Context(), id, chi.URLParam(r, "stat"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, leader)
}

// GetGames serves ?n=<int>: positive for upcoming games, negative for past ones.
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	id, ok := h.teamID(w, r)
	if !ok {
		return
	}

	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid game count")
		return
	}

	games, err := h.service.NextGames(r.Context(), id, n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, games)
}

func (h *Handler) teamID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httputil.IDParam(r, "id")
	if !ok {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid team ID")
	}
	return id, ok
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTeamNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Team not found")
	case errors.Is(err, ErrCaptainNotFound), errors.Is(err, ErrNoPlayers):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTeamExists), errors.Is(err, ErrMultipleCaptains):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidGameCount), errors.Is(err, player.ErrUnknownStat):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
