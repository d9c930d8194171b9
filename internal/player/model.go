package player

import (
	"time"

	"github.com/uptrace/bun"
)

type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	TeamID    int64     `bun:"team_id,notnull" json:"teamId" validate:"required,gt=0"`
	FirstName string    `bun:"first_name,notnull" json:"firstName" validate:"required,max=64"`
	LastName  string    `bun:"last_name,notnull" json:"lastName" validate:"required,max=64"`
	Number    int       `bun:"number,notnull" json:"number" validate:"gte=0,lte=99"`
	IsCaptain bool      `bun:"is_captain,notnull" json:"isCaptain"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

func (p *Player) String() string {
	return p.FirstName + " " + p.LastName
}

// StatLine is one player's box score for one game.
type StatLine struct {
	bun.BaseModel `bun:"table:player_game_stats,alias:s"`

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	PlayerID  int64 `bun:"player_id,notnull" json:"playerId"`
	GameID    int64 `bun:"game_id,notnull" json:"gameId" validate:"required,gt=0"`
	Minutes   int   `bun:"minutes,notnull" json:"minutes" validate:"gte=0"`
	Points    int   `bun:"points,notnull" json:"points" validate:"gte=0"`
	Rebounds  int   `bun:"rebounds,notnull" json:"rebounds" validate:"gte=0"`
	Assists   int   `bun:"assists,notnull" json:"assists" validate:"gte=0"`
	Steals    int   `bun:"steals,notnull" json:"steals" validate:"gte=0"`
	Blocks    int   `bun:"blocks,notnull" json:"blocks" validate:"gte=0"`
	Turnovers int   `bun:"turnovers,notnull" json:"turnovers" validate:"gte=0"`
	Fouls     int   `bun:"fouls,notnull" json:"fouls" validate:"gte=0"`
}
