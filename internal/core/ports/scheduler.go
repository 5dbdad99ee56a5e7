package ports

import (
	"time"
)

// SchedulerService drives the recurring exchange-rate refresh. Jobs are
// cancelled deterministically by tag, nothing fires after Stop.
type SchedulerService interface {
	Start()
	Stop()
	ScheduleRateRefresh(every time.Duration, refresh func()) error
	CancelRateRefresh()
}
