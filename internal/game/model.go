package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	HomeTeamID int64     `bun:"home_team_id,notnull" json:"homeTeamId"`
	AwayTeamID int64     `bun:"away_team_id,notnull" json:"awayTeamId"`
	Date       time.Time `bun:"date,type:date,notnull" json:"date"`
	HomeScore  *int      `bun:"home_score" json:"homeScore,omitempty"`
	AwayScore  *int      `bun:"away_score" json:"awayScore,omitempty"`
}

// MarshalJSON writes Date as YYYY-MM-DD, the same form Request accepts.
func (g Game) MarshalJSON() ([]byte, error) {
	type alias Game
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(g), Date: g.Date.Format(time.DateOnly)})
}

func (g *Game) UnmarshalJSON(data []byte) error {
	type alias Game
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		g.Date = time.Time{}
		return nil
	}
	date, err := time.Parse(time.DateOnly, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid game date %q: %w", aux.Date, err)
	}
	g.Date = date
	return nil
}

// Request is the payload accepted when scheduling a game.
type Request struct {
	HomeTeamID int64  `json:"homeTeamId" validate:"required,gt=0"`
	AwayTeamID int64  `json:"awayTeamId" validate:"required,gt=0,nefield=HomeTeamID"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	HomeScore  *int   `json:"homeScore" validate:"omitempty,gte=0"`
	AwayScore  *int   `json:"awayScore" validate:"omitempty,gte=0"`
}

func (r Request) Game() (*Game, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil, err
	}
	return &Game{
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		Date:       date,
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
	}, nil
}
