package scoring

import "fmt"

// Rules holds the configurable parts of tennis scoring and roster limits.
type Rules struct {
	GamesPerSet    int  `yaml:"games_per_set" json:"games_per_set"`
	AllowSevenFive bool `yaml:"allow_seven_five" json:"allow_seven_five"`
	AllowTiebreak  bool `yaml:"allow_tiebreak" json:"allow_tiebreak"`
	MinPlayers     int  `yaml:"min_players" json:"min_players"`
	MaxPlayers     int  `yaml:"max_players" json:"max_players"`
}

func DefaultRules() Rules {
	return Rules{
		GamesPerSet:    6,
		AllowSevenFive: true,
		AllowTiebreak:  true,
		MinPlayers:     2,
		MaxPlayers:     10,
	}
}

func (r Rules) Validate() error {
	if r.GamesPerSet < 2 {
		return fmt.Errorf("%w: games_per_set must be at least 2, got %d", ErrInvalidRules, r.GamesPerSet)
	}
	if r.MinPlayers < 2 {
		return fmt.Errorf("%w: min_players must be at least 2, got %d", ErrInvalidRules, r.MinPlayers)
	}
	if r.MaxPlayers < r.MinPlayers {
		return fmt.Errorf("%w: max_players (%d) is below min_players (%d)", ErrInvalidRules, r.MaxPlayers, r.MinPlayers)
	}
	return nil
}

// LegalSet reports whether a:b is a finished tennis set. A regular set ends when
// one side reaches GamesPerSet with a lead of at least two games; 7:5 and the
// 7:6 tie-break are allowed when enabled.
func (r Rules) LegalSet(a, b int) bool {
	if a < 0 || b < 0 || a == b {
		return false
	}
	winner, loser := a, b
	if b > a {
		winner, loser = b, a
	}
	g := r.GamesPerSet
	switch {
	case winner == g && loser <= g-2:
		return true
	case winner == g+1 && loser == g-1:
		return r.AllowSevenFive
	case winner == g+1 && loser == g:
		return r.AllowTiebreak
	}
	return false
}
