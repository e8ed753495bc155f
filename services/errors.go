package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/tennis-roundrobin/brackets"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidationFailed = errors.New("validation failed")

	// Ошибки турнира и состава
	ErrTournamentNotFound   = fmt.Errorf("tournament %w", ErrNotFound)
	ErrPlayerNotFound       = fmt.Errorf("player %w: not part of the tournament roster", ErrNotFound)
	ErrRosterInvalid        = errors.New("invalid roster")
	ErrRosterFull           = errors.New("maximum number of players reached")
	ErrRosterLocked         = errors.New("roster is locked once a schedule exists")
	ErrPlayerExists         = errors.New("player already exists")
	ErrScheduleNotGenerated = errors.New("schedule has not been generated yet")

	// Ошибки результатов
	ErrDuplicateResult      = errors.New("a result for this pairing has already been recorded")
	ErrPairingNotScheduled  = errors.New("pairing is not part of the schedule")
	ErrResultNotFound       = fmt.Errorf("result %w: nothing recorded for this pairing", ErrNotFound)
	ErrPairingAlreadyPlayed = fmt.Errorf("%w: pairing already has a recorded result", brackets.ErrRescheduleConflict)

	// Прочее
	ErrExportUnavailable  = errors.New("standings export storage is not configured")
	ErrInvalidCredentials = errors.New("invalid organizer password")
)

// ValidationError carries per-field messages for input that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
