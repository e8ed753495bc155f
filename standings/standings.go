// Package standings turns recorded match results into a ranked table. Every
// function here is pure: the same roster and results always give the same order.
package standings

import (
	"sort"

	"github.com/samber/lo"

	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/scoring"
)

// PlayerStats aggregates every result involving the player.
func PlayerStats(player string, results []models.MatchResult) models.PlayerStats {
	var st models.PlayerStats
	for _, r := range results {
		if !r.Pairing().Involves(player) {
			continue
		}
		first := r.Player1 == player

		won, lost := 0, 0
		for _, s := range r.Sets {
			own, other := s.Player1Games, s.Player2Games
			if !first {
				own, other = other, own
			}
			st.GamesWon += own
			st.GamesLost += other
			if own > other {
				won++
				if scoring.IsTiebreak(s) {
					st.TiebreaksWon++
				}
			} else {
				lost++
				if scoring.IsTiebreak(s) {
					st.TiebreaksLost++
				}
			}
		}
		st.SetsWon += won
		st.SetsLost += lost
		if won > lost {
			st.MatchesWon++
		} else {
			st.MatchesLost++
		}
	}
	return st
}

type row struct {
	player string
	pos    int
	stats  models.PlayerStats
}

// Calculate ranks the roster. Players are ordered by match wins, sets won and
// games won. Inside a block tied on match wins one bubble pass lets the winner
// of a direct match move ahead; a block without any direct result between its
// members is ordered by set ratio, game ratio and roster position instead.
func Calculate(roster []string, results []models.MatchResult) []models.StandingEntry {
	rows := lo.Map(roster, func(p string, i int) row {
		return row{player: p, pos: i, stats: PlayerStats(p, results)}
	})

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].stats, rows[j].stats
		if a.MatchesWon != b.MatchesWon {
			return a.MatchesWon > b.MatchesWon
		}
		if a.SetsWon != b.SetsWon {
			return a.SetsWon > b.SetsWon
		}
		return a.GamesWon > b.GamesWon
	})

	winners := HeadToHead(results)
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].stats.MatchesWon == rows[start].stats.MatchesWon {
			end++
		}
		resolveTie(rows[start:end], winners)
		start = end
	}

	entries := make([]models.StandingEntry, len(rows))
	for i, r := range rows {
		entries[i] = models.StandingEntry{
			Position:    i + 1,
			Player:      r.player,
			Points:      r.stats.MatchesWon,
			PlayerStats: r.stats,
		}
	}
	return entries
}

// HeadToHead maps every recorded pairing to the winner of its match.
func HeadToHead(results []models.MatchResult) map[models.PairKey]string {
	winners := make(map[models.PairKey]string, len(results))
	for _, r := range results {
		if w := r.Winner(); w != "" {
			winners[r.Pairing().Key()] = w
		}
	}
	return winners
}

func resolveTie(block []row, winners map[models.PairKey]string) {
	if len(block) < 2 {
		return
	}

	for i := 0; i+1 < len(block); i++ {
		w, ok := winners[models.KeyOf(block[i].player, block[i+1].player)]
		if ok && w == block[i+1].player {
			block[i], block[i+1] = block[i+1], block[i]
		}
	}

	if hasDirectResult(block, winners) {
		return
	}
	sort.SliceStable(block, func(i, j int) bool {
		a, b := block[i], block[j]
		if ar, br := a.stats.SetRatio(), b.stats.SetRatio(); ar != br {
			return ar > br
		}
		if ar, br := a.stats.GameRatio(), b.stats.GameRatio(); ar != br {
			return ar > br
		}
		return a.pos < b.pos
	})
}

func hasDirectResult(block []row, winners map[models.PairKey]string) bool {
	for i := range block {
		for j := i + 1; j < len(block); j++ {
			if _, ok := winners[models.KeyOf(block[i].player, block[j].player)]; ok {
				return true
			}
		}
	}
	return false
}

// Rank returns the 1-based position of player. A player with no scheduled
// matches ranks first; any other player missing from entries ranks last.
func Rank(entries []models.StandingEntry, player string, scheduled bool) int {
	if !scheduled {
		return 1
	}
	for _, e := range entries {
		if e.Player == player {
			return e.Position
		}
	}
	return max(len(entries), 1)
}
