package brackets

import (
	"fmt"
	"math"

	"github.com/Dosada05/tennis-roundrobin/models"
)

// neverPlayed stands in for the infinite rest gap of a player without a match yet.
const neverPlayed = math.MaxInt

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateSchedule builds the single-match rounds and packs the same pairings
// into multi-court days.
func (g *RoundRobinGenerator) GenerateSchedule(params GenerateScheduleParams) (*models.Schedule, error) {
	players := params.Players
	if len(players) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (found %d, min 2 required)", ErrNotEnoughPlayers, len(players))
	}

	rounds := ScheduleRounds(GeneratePairings(players))

	ordered := make([]models.Pairing, 0, len(rounds))
	for _, r := range rounds {
		ordered = append(ordered, r.Matches...)
	}

	capacity := Capacity(len(players))
	days, err := PackDays(ordered, capacity)
	if err != nil {
		return nil, fmt.Errorf("RoundRobinGenerator: %w", err)
	}

	return &models.Schedule{
		Rounds:   rounds,
		Days:     days,
		Capacity: capacity,
	}, nil
}

// GeneratePairings returns every unordered pair of players, in input order:
// (0,1), (0,2), ..., (1,2), ...
func GeneratePairings(players []string) []models.Pairing {
	n := len(players)
	if n < 2 {
		return []models.Pairing{}
	}

	pairings := make([]models.Pairing, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairings = append(pairings, models.NewPairing(players[i], players[j]))
		}
	}
	return pairings
}

// ScheduleRounds orders pairings into rounds of one match each. At every step it
// picks the pairing whose less-rested player has rested longest; ties go to the
// earliest pairing in enumeration order.
func ScheduleRounds(pairings []models.Pairing) []models.Round {
	remaining := make([]models.Pairing, len(pairings))
	copy(remaining, pairings)

	lastRound := make(map[string]int)
	rounds := make([]models.Round, 0, len(pairings))

	for len(remaining) > 0 {
		current := len(rounds)
		bestIdx, bestGap := -1, -1

		for i, p := range remaining {
			gap := min(restGap(lastRound, p.Player1, current), restGap(lastRound, p.Player2, current))
			if gap > bestGap {
				bestGap = gap
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			bestIdx = 0
		}

		best := remaining[bestIdx]
		rounds = append(rounds, models.Round{
			Number:  current + 1,
			Matches: []models.Pairing{best},
		})
		lastRound[best.Player1] = current
		lastRound[best.Player2] = current
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return rounds
}

func restGap(lastRound map[string]int, player string, current int) int {
	last, ok := lastRound[player]
	if !ok {
		return neverPlayed
	}
	return current - last
}
