package monitor

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/docbench/docbench/log"
	"github.com/docbench/docbench/stats"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("monitor already running")

	// ErrStopTimeout means the sampler did not acknowledge the stop
	// within the grace period. The summary built from whatever samples
	// were collected is still returned alongside it.
	ErrStopTimeout = errors.New("sampler did not stop within the grace period")
)

const (
	DefaultInterval  = time.Second
	DefaultStopGrace = 5 * time.Second
)

// Monitor samples one container's CPU/RAM usage on a fixed interval from
// a background goroutine. One Start/Stop cycle may be active at a time.
type Monitor struct {
	backend   stats.Backend
	stopGrace time.Duration

	mu      sync.Mutex
	current *session
}

// session owns the sample buffer for one Start/Stop cycle. A sampler
// that outlives its grace period keeps appending to its own dead
// session, never to a later one.
type session struct {
	stopC chan struct{}
	ackC  chan struct{}

	mu      sync.Mutex
	samples []Sample
}

func New(backend stats.Backend, stopGrace time.Duration) *Monitor {
	if stopGrace <= 0 {
		stopGrace = DefaultStopGrace
	}
	return &Monitor{backend: backend, stopGrace: stopGrace}
}

// Start begins sampling container every interval. It fails fast when the
// stats backend is unreachable; the caller is expected to proceed
// without resource data, monitoring is best-effort.
func (m *Monitor) Start(container string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return ErrAlreadyRunning
	}
	if m.backend == nil {
		return errors.New("no stats backend configured")
	}
	if err := m.backend.Ping(); err != nil {
		return errors.Wrap(err, "stats backend unreachable")
	}

	s := &session{
		stopC: make(chan struct{}),
		ackC:  make(chan struct{}),
	}
	m.current = s
	go m.sample(s, container, interval)
	return nil
}

func (m *Monitor) sample(s *session, container string, interval time.Duration) {
	defer close(s.ackC)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopC:
			return
		case <-ticker.C:
			stat, err := m.backend.Current(container)
			if err != nil {
				// transient miss, the tick is simply absent
				log.Debugf("skipping sample of %s: %v", container, err)
				continue
			}
			s.append(Sample{
				Timestamp:   time.Now(),
				CPUPercent:  stat.CPUPercent,
				MemoryBytes: stat.MemoryBytes,
			})
		}
	}
}

func (s *session) append(sample Sample) {
	s.mu.Lock()
	s.samples = append(s.samples, sample)
	s.mu.Unlock()
}

func (s *session) take() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples := s.samples
	s.samples = nil
	return samples
}

// Stop signals the sampler, waits up to the grace period for it to exit,
// and summarizes the collected samples. On a monitor that was never
// started it is a no-op returning an empty summary. On timeout it
// returns the partial summary together with ErrStopTimeout.
func (m *Monitor) Stop() (Summary, error) {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()

	if s == nil {
		return Summary{}, nil
	}

	close(s.stopC)

	var err error
	select {
	case <-s.ackC:
	case <-time.After(m.stopGrace):
		err = ErrStopTimeout
	}

	return Summarize(s.take()), err
}
