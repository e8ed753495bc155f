package brackets

import (
	"math"

	"github.com/samber/lo"

	"github.com/Dosada05/tennis-roundrobin/models"
)

// PlayerFairness describes how evenly a player's rest is spread over the rounds.
type PlayerFairness struct {
	Player     string  `json:"player"`
	Rounds     []int   `json:"rounds"`
	Gaps       []int   `json:"gaps"`
	AverageGap float64 `json:"average_gap"`
	Balanced   bool    `json:"balanced"`
}

// Fairness reports, per player, the rounds played and whether every gap between
// consecutive appearances stays within one round of the player's average gap.
func Fairness(rounds []models.Round, players []string) []PlayerFairness {
	report := make([]PlayerFairness, 0, len(players))
	for _, player := range players {
		played := make([]int, 0)
		for idx, r := range rounds {
			if lo.SomeBy(r.Matches, func(p models.Pairing) bool { return p.Involves(player) }) {
				played = append(played, idx)
			}
		}

		pf := PlayerFairness{Player: player, Rounds: played, Gaps: []int{}, Balanced: true}
		for i := 1; i < len(played); i++ {
			pf.Gaps = append(pf.Gaps, played[i]-played[i-1])
		}
		if len(pf.Gaps) > 0 {
			pf.AverageGap = float64(lo.Sum(pf.Gaps)) / float64(len(pf.Gaps))
			pf.Balanced = lo.EveryBy(pf.Gaps, func(g int) bool {
				return math.Abs(float64(g)-pf.AverageGap) <= 1
			})
		}
		report = append(report, pf)
	}
	return report
}
