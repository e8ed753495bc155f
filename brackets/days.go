package brackets

import (
	"fmt"
	"slices"

	"github.com/Dosada05/tennis-roundrobin/models"
)

// Capacity is the number of matches that can run on one day: every player at most once.
func Capacity(playerCount int) int {
	return playerCount / 2
}

// PackDays fills days greedily with pairings in their given order. A pairing joins
// the current day while the day has room and neither player is already booked;
// the day closes once a full pass adds nothing.
func PackDays(pairings []models.Pairing, capacity int) ([]*models.Day, error) {
	remaining := make([]models.Pairing, len(pairings))
	copy(remaining, pairings)

	days := make([]*models.Day, 0)
	for len(remaining) > 0 {
		day := &models.Day{Number: len(days) + 1, Matches: make([]models.Pairing, 0, capacity)}
		booked := make(map[string]bool)

		for {
			added := false
			kept := remaining[:0]
			for _, p := range remaining {
				if len(day.Matches) < capacity && !booked[p.Player1] && !booked[p.Player2] {
					day.Matches = append(day.Matches, p)
					booked[p.Player1] = true
					booked[p.Player2] = true
					added = true
					continue
				}
				kept = append(kept, p)
			}
			remaining = kept
			if !added {
				break
			}
		}

		if len(day.Matches) == 0 {
			return nil, fmt.Errorf("%w (day %d, %d pairings left, capacity %d)", ErrDayPackingContradiction, day.Number, len(remaining), capacity)
		}
		days = append(days, day)
	}

	return days, nil
}

// NextIncompleteDay returns the lowest-numbered day that is not completed.
func NextIncompleteDay(days []*models.Day) (*models.Day, bool) {
	var next *models.Day
	for _, d := range days {
		if d.Completed {
			continue
		}
		if next == nil || d.Number < next.Number {
			next = d
		}
	}
	return next, next != nil
}

func MarkDayCompleted(days []*models.Day, number int) error {
	for _, d := range days {
		if d.Number == number {
			d.Completed = true
			return nil
		}
	}
	return fmt.Errorf("%w: day %d", ErrDayNotFound, number)
}

// Reschedule moves a pairing to the target day and returns the updated days.
// A source day that becomes empty is dropped and a missing target day is created.
// The days slice is modified in place, callers that need the old state must clone first.
func Reschedule(days []*models.Day, key models.PairKey, target int) ([]*models.Day, error) {
	if target < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDayNumber, target)
	}

	srcIdx, matchIdx := -1, -1
	for i, d := range days {
		if j := d.IndexOf(key); j >= 0 {
			srcIdx, matchIdx = i, j
			break
		}
	}
	if srcIdx < 0 {
		return nil, fmt.Errorf("%w: %s vs %s", ErrPairingNotFound, key.Low, key.High)
	}

	source := days[srcIdx]
	pairing := source.Matches[matchIdx]
	if source.Number == target {
		return days, nil
	}

	var dest *models.Day
	for _, d := range days {
		if d.Number == target {
			dest = d
			break
		}
	}
	if dest != nil && (dest.HasPlayer(pairing.Player1) || dest.HasPlayer(pairing.Player2)) {
		return nil, fmt.Errorf("%w: day %d, %s vs %s", ErrTargetDayCollision, target, pairing.Player1, pairing.Player2)
	}

	source.Matches = slices.Delete(source.Matches, matchIdx, matchIdx+1)
	if len(source.Matches) == 0 {
		days = slices.Delete(days, srcIdx, srcIdx+1)
	}

	if dest == nil {
		dest = &models.Day{Number: target}
		days = append(days, dest)
	}
	dest.Matches = append(dest.Matches, pairing)

	slices.SortFunc(days, func(a, b *models.Day) int {
		return a.Number - b.Number
	})
	return days, nil
}
