package brackets

import (
	"github.com/Dosada05/tennis-roundrobin/models"
)

type GenerateScheduleParams struct {
	Players []string
}

type ScheduleGenerator interface {
	GenerateSchedule(params GenerateScheduleParams) (*models.Schedule, error)

	GetName() string
}
