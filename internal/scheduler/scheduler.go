package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/metrics"
)

// AbandonedMessage is the error recorded on outbound messages that never got
// a provider outcome.
const AbandonedMessage = "abandoned before provider outcome"

// staleSweeper is a minimal internal interface for the scheduler.
// It matches MessageRepository.SweepStalePending and lets us unit test the
// scheduler with a small fake implementation.
type staleSweeper interface {
	SweepStalePending(ctx context.Context, olderThan time.Time, sendErr domain.SendError) (int64, error)
}

// Scheduler periodically fails outbound messages left PENDING without a
// provider message id, which happens when the process dies between the
// PENDING insert and the provider outcome update.
type Scheduler struct {
	repo       staleSweeper
	interval   time.Duration
	staleAfter time.Duration
	metrics    *metrics.GatewayMetrics
	now        func() time.Time

	// Internal state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	lastRunAt  time.Time
	lastSwept  int64
	totalSwept int64
	runsCount  int64
	lastError  string
}

func NewScheduler(repo staleSweeper, interval, staleAfter time.Duration, m *metrics.GatewayMetrics) *Scheduler {
	return &Scheduler{
		repo:       repo,
		interval:   interval,
		staleAfter: staleAfter,
		metrics:    m,
		now:        time.Now,
	}
}

// StartWithParams overrides the interval and stale threshold for this run.
// Zero values keep the current settings.
func (s *Scheduler) StartWithParams(ctx context.Context, interval, staleAfter time.Duration) error {
	s.mu.Lock()
	if interval > 0 {
		s.interval = interval
	}
	if staleAfter > 0 {
		s.staleAfter = staleAfter
	}
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Sweeper is already running")
		return nil
	}

	if s.interval <= 0 {
		s.interval = time.Minute
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	interval := s.interval
	stopChan, doneChan := s.stopChan, s.doneChan
	s.mu.Unlock()

	logger.Infof("Starting stale message sweeper with interval: %v", interval)

	go s.run(ctx, interval, stopChan, doneChan)

	return nil
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, stopChan <-chan struct{}, doneChan chan struct{}) {
	defer close(doneChan)

	s.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)

		case <-stopChan:
			logger.Warnf("Sweeper received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Sweeper context cancelled")
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = s.now()
	s.runsCount++
	runNumber := s.runsCount
	cutoff := s.lastRunAt.Add(-s.staleAfter)
	s.mu.Unlock()

	swept, err := s.repo.SweepStalePending(ctx, cutoff, domain.SendError{Message: AbandonedMessage})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastError = err.Error()
		logger.Errorf("[Sweep #%d] Error sweeping stale messages: %v", runNumber, err)
		return
	}

	s.lastError = ""
	s.lastSwept = swept
	s.totalSwept += swept
	s.metrics.ObserveSwept(swept)

	if swept > 0 {
		logger.Warnf("[Sweep #%d] Marked %d stale pending messages as failed (created before %s)",
			runNumber, swept, cutoff.Format(time.RFC3339))
	} else {
		logger.Debugf("[Sweep #%d] No stale pending messages", runNumber)
	}
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Sweeper is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	// Send stop signal
	close(stopChan)

	// Wait for goroutine to finish
	<-doneChan

	logger.Infof("Sweeper stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:    s.running,
		LastRunAt:  s.lastRunAt,
		LastSwept:  s.lastSwept,
		TotalSwept: s.totalSwept,
		RunsCount:  s.runsCount,
		Interval:   s.interval.String(),
		StaleAfter: s.staleAfter.String(),
		LastError:  s.lastError,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.interval)
	}

	return status
}

type SchedulerStatus struct {
	Running    bool      `json:"running"`
	LastRunAt  time.Time `json:"lastRunAt,omitempty"`
	NextRunAt  time.Time `json:"nextRunAt,omitempty"`
	LastSwept  int64     `json:"lastSwept"`
	TotalSwept int64     `json:"totalSwept"`
	RunsCount  int64     `json:"runsCount"`
	Interval   string    `json:"interval"`
	StaleAfter string    `json:"staleAfter"`
	LastError  string    `json:"lastError,omitempty"`
}
