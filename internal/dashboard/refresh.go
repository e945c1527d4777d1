package dashboard

import (
	"context"
	"fmt"
)

// RefreshJob rebuilds the dashboard on a cron schedule so the cache stays warm
// and websocket subscribers get pushed updates.
type RefreshJob struct {
	service  *Service
	schedule string
}

// NewRefreshJob creates the periodic refresh job
func NewRefreshJob(service *Service, schedule string) *RefreshJob {
	return &RefreshJob{service: service, schedule: schedule}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "dashboard_refresh"
}

// Schedule returns the cron schedule (with seconds)
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run rebuilds the dashboard. A pass where every section is unavailable is
// reported as a failure so the scheduler retries it.
func (j *RefreshJob) Run(ctx context.Context) error {
	d := j.service.Refresh(ctx)
	if allUnavailable(d) {
		return fmt.Errorf("dashboard refresh: every section unavailable (%s)", d.Holdings.Message)
	}
	return nil
}

func allUnavailable(d *Dashboard) bool {
	if d.Holdings.Status != StatusUnavailable || d.Series.Status != StatusUnavailable {
		return false
	}
	for _, p := range d.Panels {
		if p.Status != StatusUnavailable {
			return false
		}
	}
	return d.Ema == nil || d.Ema.Status == StatusUnavailable
}
