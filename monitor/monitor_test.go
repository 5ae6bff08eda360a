package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbench/docbench/stats"
)

// scriptedBackend serves a fixed sequence of readings, then fails every
// query. Failed queries count as skipped ticks.
type scriptedBackend struct {
	mu      sync.Mutex
	script  []stats.Stat
	served  int
	pingErr error
}

func (b *scriptedBackend) Ping() error {
	return b.pingErr
}

func (b *scriptedBackend) Current(container string) (stats.Stat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.served >= len(b.script) {
		return stats.Stat{}, errors.New("script exhausted")
	}
	s := b.script[b.served]
	b.served++
	return s, nil
}

// blockedBackend never answers, pinning the sampler inside a tick.
type blockedBackend struct {
	release chan struct{}
}

func (b *blockedBackend) Ping() error {
	return nil
}

func (b *blockedBackend) Current(container string) (stats.Stat, error) {
	<-b.release
	return stats.Stat{}, errors.New("released")
}

func TestMonitorAggregates(t *testing.T) {
	backend := &scriptedBackend{script: []stats.Stat{
		{CPUPercent: 10, MemoryBytes: 100},
		{CPUPercent: 20, MemoryBytes: 200},
		{CPUPercent: 15, MemoryBytes: 150},
		{CPUPercent: 25, MemoryBytes: 250},
	}}

	m := New(backend, 0)
	require.NoError(t, m.Start("db", 10*time.Millisecond))
	// long enough for all four scripted readings plus a few failing
	// ticks, which must not show up in the summary
	time.Sleep(120 * time.Millisecond)

	summary, err := m.Stop()
	require.NoError(t, err)

	assert.Equal(t, 4, summary.SampleCount)
	assert.InDelta(t, 17.5, summary.CPUAvg, 0.001)
	assert.InDelta(t, 25.0, summary.CPUMax, 0.001)
	assert.InDelta(t, 175.0, summary.MemAvg, 0.001)
	assert.Equal(t, uint64(250), summary.MemMax)
}

func TestMonitorStopBeforeStart(t *testing.T) {
	m := New(&scriptedBackend{}, 0)

	summary, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestMonitorAlreadyRunning(t *testing.T) {
	m := New(&scriptedBackend{}, 0)
	require.NoError(t, m.Start("db", 10*time.Millisecond))
	defer m.Stop()

	err := m.Start("db", 10*time.Millisecond)
	assert.Equal(t, ErrAlreadyRunning, err)
}

func TestMonitorStartAgainAfterStop(t *testing.T) {
	m := New(&scriptedBackend{}, 0)
	require.NoError(t, m.Start("db", 10*time.Millisecond))
	_, err := m.Stop()
	require.NoError(t, err)

	require.NoError(t, m.Start("db", 10*time.Millisecond))
	_, err = m.Stop()
	assert.NoError(t, err)
}

func TestMonitorUnreachableBackend(t *testing.T) {
	backend := &scriptedBackend{pingErr: errors.New("no docker")}
	m := New(backend, 0)

	err := m.Start("db", 10*time.Millisecond)
	require.Error(t, err)

	// the failed start leaves the monitor stoppable as a no-op
	summary, err := m.Stop()
	require.NoError(t, err)
	assert.Zero(t, summary.SampleCount)
}

func TestMonitorAllTicksFail(t *testing.T) {
	// empty script: every tick fails and is swallowed
	m := New(&scriptedBackend{}, 0)
	require.NoError(t, m.Start("db", 5*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	summary, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestMonitorStopTimeout(t *testing.T) {
	backend := &blockedBackend{release: make(chan struct{})}
	defer close(backend.release)

	m := New(backend, 30*time.Millisecond)
	require.NoError(t, m.Start("db", 5*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	summary, err := m.Stop()
	assert.Equal(t, ErrStopTimeout, err)
	assert.Zero(t, summary.SampleCount)
	// bounded wait, not a hang
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarizeUnclampedCPU(t *testing.T) {
	summary := Summarize([]Sample{
		{CPUPercent: 380, MemoryBytes: 1 << 30},
		{CPUPercent: 420, MemoryBytes: 2 << 30},
	})

	assert.Equal(t, 2, summary.SampleCount)
	assert.InDelta(t, 400.0, summary.CPUAvg, 0.001)
	assert.InDelta(t, 420.0, summary.CPUMax, 0.001)
	assert.Equal(t, uint64(2<<30), summary.MemMax)
}
