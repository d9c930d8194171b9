package team

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"team-service/internal/player"

	"github.com/uptrace/bun"
)

const DefaultLogo = "team_logos/default.png"

// PagePrefix is where the team_page route is mounted.
const PagePrefix = "/teams/"

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	FullName    string    `bun:"full_name,notnull" json:"fullName" validate:"required,max=64"`
	ShortName   string    `bun:"short_name,notnull" json:"shortName" validate:"required,max=5"`
	Logo        string    `bun:"logo,notnull" json:"logo" validate:"max=100"`
	Description string    `bun:"description,notnull" json:"description" validate:"max=1024"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// String formats a team as "Chicago Bulls (CHI)".
func (t *Team) String() string {
	return fmt.Sprintf("%s (%s)", t.FullName, t.ShortName)
}

// URLName is the full name with spaces replaced by underscores.
func (t *Team) URLName() string {
	return strings.ReplaceAll(t.FullName, " ", "_")
}

// AbsoluteURL reverses the team_page route for t.
func (t *Team) AbsoluteURL() string {
	return PagePrefix + url.PathEscape(t.URLName())
}

// FullNameFromURLName is the inverse of URLName.
func FullNameFromURLName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// Leader is the player with the best per-game average in a category.
type Leader struct {
	Player player.Player `json:"player"`
	Stat   player.Stat   `json:"stat"`
	Value  float64       `json:"value"`
}
