package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/minmo-hq/offrampd/internal/core/ports"
)

const rateJobTag = "rate-refresh"

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

// ScheduleRateRefresh replaces any previously scheduled refresh job.
func (s *service) ScheduleRateRefresh(every time.Duration, refresh func()) error {
	if every <= 0 {
		return fmt.Errorf("invalid refresh interval: %s", every)
	}
	if refresh == nil {
		return fmt.Errorf("missing refresh function")
	}

	s.CancelRateRefresh()

	_, err := s.scheduler.Every(every).Tag(rateJobTag).Do(refresh)
	return err
}

func (s *service) CancelRateRefresh() {
	// nolint:all
	s.scheduler.RemoveByTag(rateJobTag)
}
