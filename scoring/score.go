package scoring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dosada05/tennis-roundrobin/models"
)

var setPattern = regexp.MustCompile(`^(\d+):(\d+)$`)

// Parse validates a score string such as "6:4, 3:6, 7:6" and returns its sets.
// Checks run in order: format, per-set legality, unique winner.
func Parse(score string, rules Rules) ([]models.SetScore, error) {
	parts := strings.Split(score, ",")
	sets := make([]models.SetScore, 0, len(parts))

	for _, part := range parts {
		raw := strings.TrimSpace(part)
		m := setPattern.FindStringSubmatch(raw)
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, raw)
		}
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA != nil || errB != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, raw)
		}
		sets = append(sets, models.SetScore{Player1Games: a, Player2Games: b})
	}

	for _, s := range sets {
		if s.Player1Games == s.Player2Games {
			return nil, fmt.Errorf("%w: %d:%d, a set cannot end in a tie", ErrInvalidSet, s.Player1Games, s.Player2Games)
		}
		if !rules.LegalSet(s.Player1Games, s.Player2Games) {
			return nil, fmt.Errorf("%w: %d:%d is not a finished set", ErrInvalidSet, s.Player1Games, s.Player2Games)
		}
	}

	p1, p2 := 0, 0
	for _, s := range sets {
		if s.Player1Games > s.Player2Games {
			p1++
		} else {
			p2++
		}
	}
	if p1 == p2 {
		return nil, fmt.Errorf("%w: sets are split %d:%d", ErrNoUniqueWinner, p1, p2)
	}

	return sets, nil
}

// IsTiebreak reports whether a legal set was decided by a tie-break (7:6).
func IsTiebreak(s models.SetScore) bool {
	d := s.Player1Games - s.Player2Games
	return d == 1 || d == -1
}
