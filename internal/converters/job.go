package converters

import (
	"github.com/thenoetrevino/kanbot/internal/database/rows"
	"github.com/thenoetrevino/kanbot/internal/models"
	"github.com/thenoetrevino/kanbot/internal/types"
)

// JobToModel converts an automation_jobs row to models.AutomationJob
func JobToModel(r rows.AutomationJob) *models.AutomationJob {
	return &models.AutomationJob{
		ID:        r.ID,
		CardID:    types.CardID(r.CardID),
		Kind:      models.JobKind(r.Kind),
		State:     r.State,
		CreatedAt: NullTimeToTime(r.CreatedAt),
	}
}

// JobsToModels converts a slice of automation_jobs rows
func JobsToModels(rs []rows.AutomationJob) []*models.AutomationJob {
	result := make([]*models.AutomationJob, len(rs))
	for i, r := range rs {
		result[i] = JobToModel(r)
	}
	return result
}
