package models

import "time"

// TournamentStatus is derived from the schedule and recorded results.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
)

// Tournament is the persisted form of a round-robin tournament.
type Tournament struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Roster    []string         `json:"roster" db:"roster"`
	Status    TournamentStatus `json:"status" db:"-"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Schedule *Schedule     `json:"schedule,omitempty" db:"-"`
	Results  []MatchResult `json:"results,omitempty" db:"-"`
}

// TournamentSummary is the read-only view returned by the API.
type TournamentSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Roster        []string         `json:"roster"`
	Status        TournamentStatus `json:"status"`
	MatchesTotal  int              `json:"matches_total"`
	MatchesPlayed int              `json:"matches_played"`
	DaysTotal     int              `json:"days_total"`
	NextDay       *int             `json:"next_day,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
