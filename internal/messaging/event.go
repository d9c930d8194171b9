package messaging

import "time"

// RosterChangedEvent is published whenever players join, leave or change
// captaincy on a team.
type RosterChangedEvent struct {
	TeamIDs    []int64   `json:"teamIds"`
	OccurredAt time.Time `json:"occurredAt"`
}
