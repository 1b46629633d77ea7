package job

import "time"

// Status is the lifecycle state of a translation job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is the persisted state of one translation job.
type Record struct {
	ID          string     `json:"job_id"`
	Status      Status     `json:"status"`
	Filename    string     `json:"filename"`
	UploadPath  string     `json:"-"`
	Progress    int        `json:"progress"` // 0-100
	BlocksTotal int        `json:"blocks_total"`
	BlocksDone  int        `json:"blocks_done"`
	OutputPath  string     `json:"output_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DurationSeconds is the job's processing time so far, or its final
// processing time once completed. Zero until the job starts.
func (r *Record) DurationSeconds() float64 {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(*r.StartedAt).Seconds()
}
