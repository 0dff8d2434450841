package workflow

import (
	"time"

	"github.com/kendall-kelly/printshop-api/models"
)

// jobTransitions lists, for each status, the statuses a job may move to.
// Rework is allowed: a job can be sent back to any earlier stage.
var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobPending:      {models.JobPrepress, models.JobPress, models.JobPostpress, models.JobQualityCheck, models.JobCompleted},
	models.JobPrepress:     {models.JobPending, models.JobPress, models.JobPostpress, models.JobQualityCheck, models.JobCompleted},
	models.JobPress:        {models.JobPending, models.JobPrepress, models.JobPostpress, models.JobQualityCheck, models.JobCompleted},
	models.JobPostpress:    {models.JobPending, models.JobPrepress, models.JobPress, models.JobQualityCheck, models.JobCompleted},
	models.JobQualityCheck: {models.JobPending, models.JobPrepress, models.JobPress, models.JobPostpress, models.JobCompleted},
	models.JobCompleted:    {models.JobPending, models.JobPrepress, models.JobPress, models.JobPostpress, models.JobQualityCheck},
}

// CanTransitionJob reports whether a job may move from one status to another.
// Staying in the same status is always allowed.
func CanTransitionJob(from, to models.JobStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyJobStatus moves job to status and stamps the production dates.
// start_date is set on the first move out of Pending, completion_date on
// entry to Completed; existing stamps are kept.
func ApplyJobStatus(job *models.Job, to models.JobStatus, now time.Time) error {
	if !CanTransitionJob(job.Status, to) {
		return &TransitionError{Entity: "job", From: string(job.Status), To: string(to)}
	}
	if job.Status == models.JobPending && to != models.JobPending && job.StartDate == nil {
		job.StartDate = &now
	}
	if to == models.JobCompleted && job.CompletionDate == nil {
		job.CompletionDate = &now
	}
	job.Status = to
	return nil
}

// QualityCheckOutcome returns the status a job moves to after inspection
func QualityCheckOutcome(passed bool) models.JobStatus {
	if passed {
		return models.JobCompleted
	}
	return models.JobPress
}
