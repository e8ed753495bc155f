package models

import "time"

// Pairing is an unordered match between two distinct players. Player1 and
// Player2 keep the order in which the pairing was generated or recorded.
type Pairing struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

// PairKey is the canonical unordered form of a Pairing, usable as a map key.
type PairKey struct {
	Low  string
	High string
}

func NewPairing(p1, p2 string) Pairing {
	return Pairing{Player1: p1, Player2: p2}
}

func (p Pairing) Key() PairKey {
	return KeyOf(p.Player1, p.Player2)
}

// KeyOf returns the same key for (a, b) and (b, a).
func KeyOf(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

func (p Pairing) Involves(player string) bool {
	return p.Player1 == player || p.Player2 == player
}

// Opponent returns the other player of the pairing, or "" if player is not part of it.
func (p Pairing) Opponent(player string) string {
	switch player {
	case p.Player1:
		return p.Player2
	case p.Player2:
		return p.Player1
	}
	return ""
}

// SetScore holds the games of one set, oriented as Player1:Player2 of the match.
type SetScore struct {
	Player1Games int `json:"player1_games"`
	Player2Games int `json:"player2_games"`
}

// MatchResult is a recorded, immutable outcome for a pairing.
type MatchResult struct {
	Player1    string     `json:"player1"`
	Player2    string     `json:"player2"`
	Score      string     `json:"score"`
	Sets       []SetScore `json:"sets"`
	RecordedAt time.Time  `json:"recorded_at"`
}

func (r MatchResult) Pairing() Pairing {
	return Pairing{Player1: r.Player1, Player2: r.Player2}
}

// SetsWon returns the sets won by each side, oriented as Player1, Player2.
func (r MatchResult) SetsWon() (p1, p2 int) {
	for _, s := range r.Sets {
		if s.Player1Games > s.Player2Games {
			p1++
		} else {
			p2++
		}
	}
	return p1, p2
}

// Winner returns the player who won a strict majority of sets.
func (r MatchResult) Winner() string {
	p1, p2 := r.SetsWon()
	switch {
	case p1 > p2:
		return r.Player1
	case p2 > p1:
		return r.Player2
	}
	return ""
}

// PlayerMatch is one recorded match seen from a single player's side.
type PlayerMatch struct {
	Opponent string `json:"opponent"`
	Result   string `json:"result"`
}
