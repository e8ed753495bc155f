package models

// Round is a single time slot. The greedy scheduler places exactly one match per round.
type Round struct {
	Number  int       `json:"number"`
	Matches []Pairing `json:"matches"`
}

// Day is a multi-court slot holding up to Capacity non-overlapping matches.
type Day struct {
	Number    int       `json:"number"`
	Matches   []Pairing `json:"matches"`
	Completed bool      `json:"completed"`
}

func (d *Day) HasPlayer(player string) bool {
	for _, m := range d.Matches {
		if m.Involves(player) {
			return true
		}
	}
	return false
}

func (d *Day) IndexOf(key PairKey) int {
	for i, m := range d.Matches {
		if m.Key() == key {
			return i
		}
	}
	return -1
}

// Schedule is the authoritative source of which pairings are valid for result recording.
type Schedule struct {
	Rounds   []Round `json:"rounds"`
	Days     []*Day  `json:"days"`
	Capacity int     `json:"capacity"`
}

// Contains reports whether the unordered pairing appears anywhere in the schedule.
func (s *Schedule) Contains(key PairKey) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Rounds {
		for _, m := range r.Matches {
			if m.Key() == key {
				return true
			}
		}
	}
	for _, d := range s.Days {
		if d.IndexOf(key) >= 0 {
			return true
		}
	}
	return false
}

// Players returns every scheduled player in order of first appearance.
func (s *Schedule) Players() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool)
	players := make([]string, 0)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			players = append(players, p)
		}
	}
	for _, r := range s.Rounds {
		for _, m := range r.Matches {
			add(m.Player1)
			add(m.Player2)
		}
	}
	return players
}

// Day returns the day with the given number, or nil.
func (s *Schedule) Day(number int) *Day {
	for _, d := range s.Days {
		if d.Number == number {
			return d
		}
	}
	return nil
}

// Clone deep-copies the schedule so callers can mutate days without touching the original.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := &Schedule{
		Rounds:   make([]Round, len(s.Rounds)),
		Days:     make([]*Day, len(s.Days)),
		Capacity: s.Capacity,
	}
	for i, r := range s.Rounds {
		out.Rounds[i] = Round{Number: r.Number, Matches: append([]Pairing(nil), r.Matches...)}
	}
	for i, d := range s.Days {
		out.Days[i] = &Day{Number: d.Number, Matches: append([]Pairing(nil), d.Matches...), Completed: d.Completed}
	}
	return out
}
