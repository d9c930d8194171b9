package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"team-service/internal/cache"
	"team-service/internal/game"
	"team-service/internal/metrics"
	"team-service/internal/player"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamExists       = errors.New("team with this name already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCaptainNotFound  = errors.New("team has no captain")
	ErrMultipleCaptains = errors.New("team has more than one captain")
	ErrNoPlayers        = errors.New("team has no players")
	ErrInvalidGameCount = errors.New("game count can't be 0")
)

const defaultCacheTTL = 5 * time.Minute

type Service interface {
	CreateTeam(ctx context.Context, team *Team) error
	GetAllTeams(ctx context.Context) ([]Team, error)
	GetTeamByID(ctx context.Context, id int64) (*Team, error)
	GetTeamByURLName(ctx context.Context, name string) (*Team, error)
	UpdateTeam(ctx context.Context, team *Team) error
	DeleteTeam(ctx context.Context, id int64) error

	CountPlayers(ctx context.Context, teamID int64) (int, error)
	Captain(ctx context.Context, teamID int64) (*player.Player, error)
	Players(ctx context.Context, teamID int64) ([]player.Player, error)
	AverageLeader(ctx context.Context, teamID int64, statName string) (*Leader, error)
	NextGames(ctx context.Context, teamID int64, n int) ([]game.Game, error)

	// RosterChanged drops memoized lookups of the given teams.
	RosterChanged(ctx context.Context, teamIDs ...int64) error
}

type Option func(*service)

// WithClock sets the source of "today" for schedule lookups.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithRosterNotifier fans team deletions out to other instances.
func WithRosterNotifier(n player.RosterNotifier) Option {
	return func(s *service) { s.notifier = n }
}

type service struct {
	repo     Repository
	cache    cache.Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	cacheTTL time.Duration
	notifier player.RosterNotifier

	// generations counts invalidations per team. A lookup only stores its
	// result if no invalidation ran while it was reading.
	genMu       sync.Mutex
	generations map[int64]uint64
}

func NewService(repo Repository, c cache.Cache, logger *slog.Logger, m *metrics.Metrics, opts ...Option) Service {
	s := &service{
		repo:        repo,
		cache:       c,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
		cacheTTL:    defaultCacheTTL,
		generations: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateTeam(ctx context.Context, team *Team) error {
	if team.FullName == "" || team.ShortName == "" {
		return ErrInvalidInput
	}
	if team.Logo == "" {
		team.Logo = DefaultLogo
	}
	// The sequence and column defaults own these.
	team.ID = 0
	team.CreatedAt, team.UpdatedAt = time.Time{}, time.Time{}
	if err := s.repo.Create(ctx, team); err != nil {
		return err
	}
	s.metrics.RecordTeamCreated(ctx)
	return nil
}

func (s *service) GetAllTeams(ctx context.Context) ([]Team, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetTeamByID(ctx context.Context, id int64) (*Team, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetTeamByURLName(ctx context.Context, name string) (*Team, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByFullName(ctx, FullNameFromURLName(name))
}

func (s *service) UpdateTeam(ctx context.Context, team *Team) error {
	if team.ID <= 0 || team.FullName == "" || team.ShortName == "" {
		return ErrInvalidInput
	}
	if team.Logo == "" {
		team.Logo = DefaultLogo
	}
	return s.repo.Update(ctx, team)
}

func (s *service) DeleteTeam(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.RosterChanged(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "stale cache after team delete", "team_id", id, "error", err)
	}
	if s.notifier != nil {
		if err := s.notifier.RosterChanged(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to publish team delete", "team_id", id, "error", err)
		}
	}
	return nil
}

// CountPlayers is memoized per team until the roster changes or the entry expires.
func (s *service) CountPlayers(ctx context.Context, teamID int64) (int, error) {
	key := countPlayersKey(teamID)

	var count int
	if s.cached(ctx, key, "count_players", &count) {
		return count, nil
	}

	gen := s.generation(teamID)
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return 0, err
	}

	count, err := s.repo.CountPlayers(ctx, teamID)
	if err != nil {
		return 0, err
	}

	s.store(ctx, teamID, gen, key, count)
	return count, nil
}

// Captain is memoized like CountPlayers. Exactly one captain is expected.
func (s *service) Captain(ctx context.Context, teamID int64) (*player.Player, error) {
	key := captainKey(teamID)

	captain := new(player.Player)
	if s.cached(ctx, key, "captain", captain) {
		return captain, nil
	}

	gen := s.generation(teamID)
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}

	captains, err := s.repo.Captains(ctx, teamID, 2)
	if err != nil {
		return nil, err
	}
	switch len(captains) {
	case 0:
		return nil, ErrCaptainNotFound
	case 1:
		captain = &captains[0]
	default:
		return nil, ErrMultipleCaptains
	}

	s.store(ctx, teamID, gen, key, captain)
	return captain, nil
}

func (s *service) Players(ctx context.Context, teamID int64) ([]player.Player, error) {
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.repo.Players(ctx, teamID)
}

func (s *service) AverageLeader(ctx context.Context, teamID int64, statName string) (*Leader, error) {
	stat, err := player.ParseStat(statName)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}

	s.metrics.RecordLeaderLookup(ctx, string(stat))
	return s.repo.AverageLeader(ctx, teamID, stat)
}

// NextGames returns the next n games (n > 0) or the previous -n games (n < 0).
func (s *service) NextGames(ctx context.Context, teamID int64, n int) ([]game.Game, error) {
	if n == 0 {
		return nil, ErrInvalidGameCount
	}
	if _, err := s.GetTeamByID(ctx, teamID); err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.Games(ctx, teamID, today, n)
}

func (s *service) RosterChanged(ctx context.Context, teamIDs ...int64) error {
	if s.cache == nil || len(teamIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, 2*len(teamIDs))
	s.genMu.Lock()
	for _, id := range teamIDs {
		s.generations[id]++
		keys = append(keys, countPlayersKey(id), captainKey(id))
	}
	s.genMu.Unlock()

	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate team cache: %w", err)
	}
	s.metrics.RecordRosterChange(ctx)
	s.logger.DebugContext(ctx, "team cache invalidated", "team_ids", teamIDs)
	return nil
}

func (s *service) cached(ctx context.Context, key, property string, dest any) bool {
	if s.cache == nil {
		return false
	}

	err := cache.GetJSON(ctx, s.cache, key, dest)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	hit := err == nil
	s.metrics.RecordCacheLookup(ctx, property, hit)
	return hit
}

func (s *service) generation(teamID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[teamID]
}

func (s *service) store(ctx context.Context, teamID int64, gen uint64, key string, value any) {
	if s.cache == nil {
		return
	}

	// Held across the write so an invalidation either precedes the check or
	// deletes what was written.
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[teamID] != gen {
		s.logger.DebugContext(ctx, "skipping cache write, roster changed during lookup", "key", key)
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, value, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func countPlayersKey(teamID int64) string {
	return fmt.Sprintf("team:%d:count_players", teamID)
}

func captainKey(teamID int64) string {
	return fmt.Sprintf("team:%d:captain", teamID)
}
