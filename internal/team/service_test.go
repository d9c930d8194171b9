package team_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"team-service/internal/cache"
	"team-service/internal/game"
	"team-service/internal/metrics"
	"team-service/internal/player"
	"team-service/internal/team"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	teams    map[int64]*team.Team
	players  []player.Player
	calls    map[string]int
	created  []team.Team
	onCount  func()
	gamesArg struct {
		today time.Time
		n     int
	}
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		teams: map[int64]*team.Team{},
		calls: map[string]int{},
	}
}

func (f *fakeRepository) Create(_ context.Context, t *team.Team) error {
	f.calls["Create"]++
	f.created = append(f.created, *t)
	t.ID = int64(len(f.teams) + 1)
	f.teams[t.ID] = t
	return nil
}

func (f *fakeRepository) GetAll(context.Context) ([]team.Team, error) {
	teams := make([]team.Team, 0, len(f.teams))
	for _, t := range f.teams {
		teams = append(teams, *t)
	}
	return teams, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*team.Team, error) {
	f.calls["GetByID"]++
	t, ok := f.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	return t, nil
}

func (f *fakeRepository) GetByFullName(_ context.Context, name string) (*team.Team, error) {
	for _, t := range f.teams {
		if t.FullName == name {
			return t, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (f *fakeRepository) Update(_ context.Context, t *team.Team) error {
	if _, ok := f.teams[t.ID]; !ok {
		return team.ErrTeamNotFound
	}
	f.teams[t.ID] = t
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id int64) error {
	if _, ok := f.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeRepository) CountPlayers(_ context.Context, teamID int64) (int, error) {
	f.calls["CountPlayers"]++
	count := 0
	for _, p := range f.players {
		if p.TeamID == teamID {
			count++
		}
	}
	if f.onCount != nil {
		f.onCount()
	}
	return count, nil
}

func (f *fakeRepository) Captains(_ context.Context, teamID int64, limit int) ([]player.Player, error) {
	f.calls["Captains"]++
	var captains []player.Player
	for _, p := range f.players {
		if p.TeamID == teamID && p.IsCaptain && len(captains) < limit {
			captains = append(captains, p)
		}
	}
	return captains, nil
}

func (f *fakeRepository) Players(_ context.Context, teamID int64) ([]player.Player, error) {
	var roster []player.Player
	for _, p := range f.players {
		if p.TeamID == teamID {
			roster = append(roster, p)
		}
	}
	return roster, nil
}

func (f *fakeRepository) AverageLeader(_ context.Context, teamID int64, stat player.Stat) (*team.Leader, error) {
	f.calls["AverageLeader"]++
	roster, _ := f.Players(context.Background(), teamID)
	if len(roster) == 0 {
		return nil, team.ErrNoPlayers
	}
	return &team.Leader{Player: roster[0], Stat: stat, Value: 1}, nil
}

func (f *fakeRepository) Games(_ context.Context, _ int64, today time.Time, n int) ([]game.Game, error) {
	f.calls["Games"]++
	f.gamesArg.today = today
	f.gamesArg.n = n
	return []game.Game{}, nil
}

func newTestService(t *testing.T, repo team.Repository, opts ...team.Option) (team.Service, *cache.MemoryCache) {
	t.Helper()
	c := cache.NewMemoryCache(100, time.Minute)
	t.Cleanup(func() { c.Close() })
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return team.NewService(repo, c, logger, metrics.NewMock(), opts...), c
}

func TestService_CreateTeam(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	t.Run("DefaultLogo", func(t *testing.T) {
		bulls := &team.Team{FullName: "Chicago Bulls", ShortName: "CHI"}
		require.NoError(t, svc.CreateTeam(ctx, bulls))
		assert.Equal(t, team.DefaultLogo, bulls.Logo)
		assert.NotZero(t, bulls.ID)
	})

	t.Run("KeepsLogo", func(t *testing.T) {
		celtics := &team.Team{FullName: "Boston Celtics", ShortName: "BOS", Logo: "team_logos/bos.png"}
		require.NoError(t, svc.CreateTeam(ctx, celtics))
		assert.Equal(t, "team_logos/bos.png", celtics.Logo)
	})

	t.Run("MissingNames", func(t *testing.T) {
		err := svc.CreateTeam(ctx, &team.Team{FullName: "Nameless"})
		assert.ErrorIs(t, err, team.ErrInvalidInput)
	})
	t.Run("IgnoresClientKeys", func(t *testing.T) {
		stamp := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		knicks := &team.Team{ID: 99, FullName: "New York Knicks", ShortName: "NYK", CreatedAt: stamp, UpdatedAt: stamp}
		require.NoError(t, svc.CreateTeam(ctx, knicks))

		received := repo.created[len(repo.created)-1]
		assert.Zero(t, received.ID)
		assert.True(t, received.CreatedAt.IsZero())
		assert.True(t, received.UpdatedAt.IsZero())
	})
}

func TestService_CountPlayersIsMemoized(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1, FullName: "Chicago Bulls", ShortName: "CHI"}
	repo.players = []player.Player{
		{ID: 1, TeamID: 1},
		{ID: 2, TeamID: 1},
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	count, err := svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	repo.players = append(repo.players, player.Player{ID: 3, TeamID: 1})

	count, err = svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "served from cache")
	assert.Equal(t, 1, repo.calls["CountPlayers"])

	require.NoError(t, svc.RosterChanged(ctx, 1))

	count, err = svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, repo.calls["CountPlayers"])
}

func TestService_CountPlayersSkipsStaleWrite(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1, FullName: "Chicago Bulls", ShortName: "CHI"}
	repo.players = []player.Player{{ID: 1, TeamID: 1}}
	svc, c := newTestService(t, repo)
	ctx := context.Background()

	// A player joins while the first lookup is reading.
	repo.onCount = func() {
		repo.onCount = nil
		repo.players = append(repo.players, player.Player{ID: 2, TeamID: 1})
		require.NoError(t, svc.RosterChanged(ctx, 1))
	}

	count, err := svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Zero(t, c.Len(), "result read before the roster change is not cached")

	count, err = svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, repo.calls["CountPlayers"])
	assert.Equal(t, 1, c.Len())
}

func TestService_CountPlayersUnknownTeam(t *testing.T) {
	svc, _ := newTestService(t, newFakeRepository())

	_, err := svc.CountPlayers(context.Background(), 42)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestService_Captain(t *testing.T) {
	ctx := context.Background()

	t.Run("Single", func(t *testing.T) {
		repo := newFakeRepository()
		repo.teams[1] = &team.Team{ID: 1}
		repo.players = []player.Player{
			{ID: 1, TeamID: 1, FirstName: "Scottie"},
			{ID: 2, TeamID: 1, FirstName: "Michael", IsCaptain: true},
		}
		svc, _ := newTestService(t, repo)

		captain, err := svc.Captain(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), captain.ID)

		captain, err = svc.Captain(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Michael", captain.FirstName)
		assert.Equal(t, 1, repo.calls["Captains"])
	})

	t.Run("None", func(t *testing.T) {
		repo := newFakeRepository()
		repo.teams[1] = &team.Team{ID: 1}
		repo.players = []player.Player{{ID: 1, TeamID: 1}}
		svc, _ := newTestService(t, repo)

		_, err := svc.Captain(ctx, 1)
		assert.ErrorIs(t, err, team.ErrCaptainNotFound)
	})

	t.Run("Multiple", func(t *testing.T) {
		repo := newFakeRepository()
		repo.teams[1] = &team.Team{ID: 1}
		repo.players = []player.Player{
			{ID: 1, TeamID: 1, IsCaptain: true},
			{ID: 2, TeamID: 1, IsCaptain: true},
		}
		svc, _ := newTestService(t, repo)

		_, err := svc.Captain(ctx, 1)
		assert.ErrorIs(t, err, team.ErrMultipleCaptains)

		_, err = svc.Captain(ctx, 1)
		assert.ErrorIs(t, err, team.ErrMultipleCaptains)
		assert.Equal(t, 2, repo.calls["Captains"], "errors are not memoized")
	})
}

func TestService_AverageLeader(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1}
	repo.teams[2] = &team.Team{ID: 2}
	repo.players = []player.Player{{ID: 1, TeamID: 1}}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	leader, err := svc.AverageLeader(ctx, 1, "Points")
	require.NoError(t, err)
	assert.Equal(t, player.Points, leader.Stat)

	_, err = svc.AverageLeader(ctx, 1, "dunks")
	assert.ErrorIs(t, err, player.ErrUnknownStat)

	_, err = svc.AverageLeader(ctx, 2, "points")
	assert.ErrorIs(t, err, team.ErrNoPlayers)

	_, err = svc.AverageLeader(ctx, 3, "points")
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestService_NextGames(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1}
	now := time.Date(2024, time.March, 15, 21, 30, 0, 0, time.Local)
	svc, _ := newTestService(t, repo, team.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	t.Run("ZeroIsRejected", func(t *testing.T) {
		_, err := svc.NextGames(ctx, 1, 0)
		assert.ErrorIs(t, err, team.ErrInvalidGameCount)
		assert.Zero(t, repo.calls["Games"])
	})

	t.Run("PassesTodayAndCount", func(t *testing.T) {
		_, err := svc.NextGames(ctx, 1, -3)
		require.NoError(t, err)
		assert.Equal(t, -3, repo.gamesArg.n)
		assert.Equal(t, "2024-03-15", repo.gamesArg.today.Format(time.DateOnly))
	})

	t.Run("UnknownTeam", func(t *testing.T) {
		_, err := svc.NextGames(ctx, 9, 2)
		assert.ErrorIs(t, err, team.ErrTeamNotFound)
	})
}

func TestService_GetTeamByURLName(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1, FullName: "Chicago Bulls", ShortName: "CHI"}
	svc, _ := newTestService(t, repo)

	got, err := svc.GetTeamByURLName(context.Background(), "Chicago_Bulls")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	_, err = svc.GetTeamByURLName(context.Background(), "Chicago_Cubs")
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestService_DeleteTeamDropsCache(t *testing.T) {
	repo := newFakeRepository()
	repo.teams[1] = &team.Team{ID: 1}
	svc, c := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.CountPlayers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, svc.DeleteTeam(ctx, 1))
	assert.Equal(t, 0, c.Len())
}

type recordingNotifier struct {
	calls [][]int64
	err   error
}

func (n *recordingNotifier) RosterChanged(_ context.Context, teamIDs ...int64) error {
	n.calls = append(n.calls, teamIDs)
	return n.err
}

func TestService_DeleteTeamPublishes(t *testing.T) {
	ctx := context.Background()

	t.Run("NotifiesOtherInstances", func(t *testing.T) {
		repo := newFakeRepository()
		repo.teams[3] = &team.Team{ID: 3}
		notifier := &recordingNotifier{}
		svc, _ := newTestService(t, repo, team.WithRosterNotifier(notifier))

		require.NoError(t, svc.DeleteTeam(ctx, 3))
		assert.Equal(t, [][]int64{{3}}, notifier.calls)
	})

	t.Run("PublishFailureDoesNotFailDelete", func(t *testing.T) {
		repo := newFakeRepository()
		repo.teams[3] = &team.Team{ID: 3}
		notifier := &recordingNotifier{err: errors.New("nats down")}
		svc, _ := newTestService(t, repo, team.WithRosterNotifier(notifier))

		require.NoError(t, svc.DeleteTeam(ctx, 3))
		assert.NotContains(t, repo.teams, int64(3))
	})

	t.Run("MissingTeamNotPublished", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc, _ := newTestService(t, newFakeRepository(), team.WithRosterNotifier(notifier))

		assert.ErrorIs(t, svc.DeleteTeam(ctx, 9), team.ErrTeamNotFound)
		assert.Empty(t, notifier.calls)
	})
}
