package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Check tests one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

// Status is the last observed health of every registered dependency.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every dependency passed its last check.
func (s Status) Healthy() bool {
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}

// Monitor periodically checks dependencies (database, session store) in parallel.
type Monitor struct {
	checks  map[string]Check
	timeout time.Duration

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   make(map[string]Check),
		timeout:  3 * time.Second,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Add registers a named check. Call before Start.
func (m *Monitor) Add(name string, check Check) *Monitor {
	if check != nil {
		m.checks[name] = check
	}
	return m
}

func (m *Monitor) Start() {
	m.Refresh(context.Background())
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check concurrently and records the results.
func (m *Monitor) Refresh(ctx context.Context) {
	var (
		mu       sync.Mutex
		services = make(map[string]bool, len(m.checks))
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range m.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, m.timeout)
			defer cancel()
			err := check(checkCtx)
			if err != nil {
				m.logger.Warn("dependency check failed", zap.String("service", name), zap.Error(err))
			}
			mu.Lock()
			services[name] = err == nil
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
