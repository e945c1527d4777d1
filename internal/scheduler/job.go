package scheduler

import (
	"context"
	"time"
)

// Job is one unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes one attempt. ctx is cancelled when the scheduler stops.
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds first:
	// "0 */5 * * * *" (every five minutes), "@every 30s", "@hourly"
	Schedule() string
}

// JobFunc adapts a plain function to Job
type JobFunc struct {
	JobName string
	Spec    string
	Fn      func(ctx context.Context) error
}

func (f JobFunc) Name() string                  { return f.JobName }
func (f JobFunc) Schedule() string              { return f.Spec }
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// JobResult is the outcome of one run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory bounds the results kept per job
const maxHistory = 100

// JobHistory keeps the last maxHistory results, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest past maxHistory
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - maxHistory; over > 0 {
		h.Results = h.Results[over:]
	}
}

// Latest returns up to n most recent results
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(max(n, 0), len(h.Results))
	return h.Results[len(h.Results)-n:]
}

// Failures counts failed runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is 0.0 ~ 1.0; zero with no runs
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}

// lastStart returns the start of the newest result matching keep, or nil
func (h *JobHistory) lastStart(keep func(JobResult) bool) *time.Time {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if keep(h.Results[i]) {
			at := h.Results[i].StartTime
			return &at
		}
	}
	return nil
}
