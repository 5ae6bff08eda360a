package stats

// Stat is a point-in-time resource reading for one container. CPU is a
// percentage of a single core, so multi-core containers can exceed 100.
type Stat struct {
	CPUPercent  float64
	MemoryBytes uint64
}

// Backend answers resource queries for named containers. Implementations
// must be safe to query repeatedly from a single goroutine; they never
// mutate container state.
type Backend interface {
	// Ping reports whether the backend is reachable at all.
	Ping() error

	// Current returns the instantaneous usage of the container, or an
	// error when the container is unknown or the backend is unreachable.
	Current(container string) (Stat, error)
}
