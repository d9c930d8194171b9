package player

import (
	"fmt"
	"strings"
)

// Stat is a per-game statistical category. Its value is the stat line column.
type Stat string

const (
	Points    Stat = "points"
	Rebounds  Stat = "rebounds"
	Assists   Stat = "assists"
	Steals    Stat = "steals"
	Blocks    Stat = "blocks"
	Turnovers Stat = "turnovers"
	Fouls     Stat = "fouls"
	Minutes   Stat = "minutes"
)

var stats = map[Stat]struct{}{
	Points:    {},
	Rebounds:  {},
	Assists:   {},
	Steals:    {},
	Blocks:    {},
	Turnovers: {},
	Fouls:     {},
	Minutes:   {},
}

// ParseStat accepts category names case-insensitively.
func ParseStat(name string) (Stat, error) {
	stat := Stat(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := stats[stat]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStat, name)
	}
	return stat, nil
}

// Column is only safe to interpolate for stats returned by ParseStat.
func (s Stat) Column() string {
	return string(s)
}
