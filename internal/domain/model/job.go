package model

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "Processing"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
)

// IsTerminal reports whether no further transition is defined for s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Job is one ingestion attempt for one uploaded file. It is created in
// Processing before the file is queued and moved to a terminal status exactly
// once by the ingest worker.
type Job struct {
	ID        int64     `json:"job_id"`
	FileName  string    `json:"file_name"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransitionTo reports whether the job may move to next.
func (j *Job) CanTransitionTo(next JobStatus) bool {
	return j.Status == JobStatusProcessing && next.IsTerminal()
}
