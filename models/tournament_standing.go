package models

// PlayerStats aggregates every recorded match involving a player.
type PlayerStats struct {
	MatchesWon    int `json:"matches_won"`
	MatchesLost   int `json:"matches_lost"`
	SetsWon       int `json:"sets_won"`
	SetsLost      int `json:"sets_lost"`
	GamesWon      int `json:"games_won"`
	GamesLost     int `json:"games_lost"`
	TiebreaksWon  int `json:"tiebreaks_won"`
	TiebreaksLost int `json:"tiebreaks_lost"`
}

func (s PlayerStats) SetRatio() float64 {
	return ratio(s.SetsWon, s.SetsLost)
}

func (s PlayerStats) GameRatio() float64 {
	return ratio(s.GamesWon, s.GamesLost)
}

func ratio(won, lost int) float64 {
	total := won + lost
	if total < 1 {
		total = 1
	}
	return float64(won) / float64(total)
}

// StandingEntry is derived on demand and never persisted.
type StandingEntry struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
	Points   int    `json:"points"`
	PlayerStats
}
