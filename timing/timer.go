// Package timing is a named-timer registry for opportunistic profiling
// of estimator internals. Timers accumulate wall-clock samples per name;
// the registry reports summary statistics and never influences
// correctness. A process-wide default registry is provided, but
// independent registries can be injected wherever isolation (or a mock
// clock) is wanted.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Registry accumulates named wall-clock samples. Safe for concurrent
// use.
type Registry struct {
	mu      sync.Mutex
	clock   clock.Clock
	samples map[string][]float64
}

// NewRegistry returns an empty registry reading the given clock; nil
// means the real wall clock.
func NewRegistry(c clock.Clock) *Registry {
	if c == nil {
		c = clock.New()
	}
	return &Registry{clock: c, samples: map[string][]float64{}}
}

var defaultRegistry = NewRegistry(nil)

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Timer measures one interval; created by Registry.Timer, finished by
// Stop.
type Timer struct {
	registry *Registry
	name     string
	start    time.Time
	stopped  bool
}

// Timer starts a named timer.
func (r *Registry) Timer(name string) *Timer {
	return &Timer{registry: r, name: name, start: r.clock.Now()}
}

// Stop records the elapsed interval under the timer's name and returns
// it in seconds. Calling Stop again is a no-op returning 0.
func (t *Timer) Stop() float64 {
	if t.stopped {
		return 0
	}
	t.stopped = true
	secs := t.registry.clock.Now().Sub(t.start).Seconds()
	t.registry.mu.Lock()
	t.registry.samples[t.name] = append(t.registry.samples[t.name], secs)
	t.registry.mu.Unlock()
	return secs
}

// Names returns the registered timer names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.samples))
	for name := range r.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many samples a name has accumulated.
func (r *Registry) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples[name])
}

// Total returns the summed seconds recorded under name.
func (r *Registry) Total(name string) (float64, error) {
	return r.statistic(name, stats.Sum)
}

// Mean returns the mean sample in seconds.
func (r *Registry) Mean(name string) (float64, error) {
	return r.statistic(name, stats.Mean)
}

// Median returns the median sample in seconds.
func (r *Registry) Median(name string) (float64, error) {
	return r.statistic(name, stats.Median)
}

// StdDev returns the sample standard deviation in seconds.
func (r *Registry) StdDev(name string) (float64, error) {
	return r.statistic(name, stats.StdDevS)
}

// Min returns the smallest sample in seconds.
func (r *Registry) Min(name string) (float64, error) {
	return r.statistic(name, stats.Min)
}

// Max returns the largest sample in seconds.
func (r *Registry) Max(name string) (float64, error) {
	return r.statistic(name, stats.Max)
}

func (r *Registry) statistic(name string, fn func(stats.Float64Data) (float64, error)) (float64, error) {
	r.mu.Lock()
	data := stats.Float64Data(append([]float64(nil), r.samples[name]...))
	r.mu.Unlock()
	if len(data) == 0 {
		return 0, errors.Errorf("no samples recorded for timer %q", name)
	}
	v, err := fn(data)
	if err != nil {
		return 0, errors.Wrapf(err, "computing statistic for timer %q", name)
	}
	return v, nil
}

// Reset drops every sample recorded under name.
func (r *Registry) Reset(name string) {
	r.mu.Lock()
	delete(r.samples, name)
	r.mu.Unlock()
}

// LogSummary prints one line of statistics per timer name.
func (r *Registry) LogSummary(logger golog.Logger) {
	for _, name := range r.Names() {
		mean, _ := r.Mean(name)
		stddev, _ := r.StdDev(name)
		minimum, _ := r.Min(name)
		maximum, _ := r.Max(name)
		logger.Infof(
			"%-40s n=%-6d mean=%.6fs std=%.6fs min=%.6fs max=%.6fs",
			name, r.Count(name), mean, stddev, minimum, maximum,
		)
	}
}
