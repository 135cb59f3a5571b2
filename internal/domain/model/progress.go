package model

import "time"

type LineStatus string

const (
	LineStatusCompleted LineStatus = "Completed"
	LineStatusFailed    LineStatus = "Failed"
)

// ProgressEntry is the outcome of one line of one job. ErrorMessage is set
// iff LineStatus is Failed.
type ProgressEntry struct {
	ID           int64
	JobID        int64
	LineNumber   int
	LineStatus   LineStatus
	ErrorMessage *string
	CreatedAt    time.Time
}

func NewCompletedEntry(jobID int64, lineNumber int) *ProgressEntry {
	return &ProgressEntry{JobID: jobID, LineNumber: lineNumber, LineStatus: LineStatusCompleted}
}

func NewFailedEntry(jobID int64, lineNumber int, msg string) *ProgressEntry {
	return &ProgressEntry{JobID: jobID, LineNumber: lineNumber, LineStatus: LineStatusFailed, ErrorMessage: &msg}
}

// IngestionReport aggregates a job's progress entries for the status query.
type IngestionReport struct {
	Status         JobStatus `json:"status"`
	ProcessedLines int       `json:"processed_lines"`
	ErrorLines     int       `json:"error_lines"`
	Errors         []string  `json:"errors"`
}

// Summarize folds entries, in ledger order, into a report for status.
func Summarize(status JobStatus, entries []*ProgressEntry) *IngestionReport {
	r := &IngestionReport{Status: status, Errors: []string{}}
	for _, e := range entries {
		if e.LineStatus == LineStatusCompleted {
			r.ProcessedLines++
			continue
		}
		r.ErrorLines++
		if e.ErrorMessage != nil {
			r.Errors = append(r.Errors, *e.ErrorMessage)
		} else {
			r.Errors = append(r.Errors, "")
		}
	}
	return r
}
