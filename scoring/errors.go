package scoring

import "errors"

var (
	ErrInvalidScoreFormat = errors.New("invalid score format, expected sets like '6:4, 6:3'")
	ErrInvalidSet         = errors.New("invalid set score")
	ErrNoUniqueWinner     = errors.New("no unique winner")
	ErrInvalidRules       = errors.New("invalid scoring rules")
)
