package models

import "time"

// JobState is the lifecycle state of an asynchronous analysis job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a point-in-time snapshot of an asynchronous analysis. The engine
// owns the live job; Poll returns copies, so a snapshot never changes after
// it is handed out.
//
// Progress is a percentage that is monotonically non-decreasing while the
// job runs. Result is nil until the job completes; Error is empty unless it
// failed.
type Job struct {
	ID          string          `json:"id"`
	Root        string          `json:"root"`
	State       JobState        `json:"state"`
	Progress    int             `json:"progress"`
	Result      *AnalysisReport `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
}
