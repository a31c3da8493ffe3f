package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a probe that sets no timeout of its own
const DefaultTimeout = 2 * time.Second

// Status represents the health status of a service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Probe is a named check. A failing required probe makes the service
// unhealthy; a failing optional probe only degrades it.
type Probe struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// CheckResult is the outcome of one probe
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Report aggregates the probe results of one Check
type Report struct {
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Status    Status        `json:"status"`
	Uptime    time.Duration `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks"`
}

// Registry holds the probes of one service
type Registry struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	service string
	version string
	startAt time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(service, version string) *Registry {
	return &Registry{
		probes:  make(map[string]Probe),
		service: service,
		version: version,
		startAt: time.Now(),
	}
}

// Register adds a probe, replacing one with the same name
func (r *Registry) Register(p Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[p.Name] = p
}

// Check runs every probe concurrently and aggregates the results.
// Checks are ordered by name.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	probes := make([]Probe, 0, len(r.probes))
	for _, p := range r.probes {
		probes = append(probes, p)
	}
	r.mu.RUnlock()

	sort.Slice(probes, func(i, j int) bool { return probes[i].Name < probes[j].Name })

	results := make([]CheckResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			results[i] = run(ctx, p)
		}(i, p)
	}
	wg.Wait()

	report := &Report{
		Service:   r.service,
		Version:   r.version,
		Status:    StatusHealthy,
		Uptime:    time.Since(r.startAt),
		Timestamp: time.Now(),
		Checks:    results,
	}
	for _, res := range results {
		if res.Status == StatusUnhealthy {
			report.Status = StatusUnhealthy
			break
		}
		if res.Status == StatusDegraded {
			report.Status = StatusDegraded
		}
	}
	return report
}

func run(ctx context.Context, p Probe) CheckResult {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.Run(ctx)
	res := CheckResult{Name: p.Name, Status: StatusHealthy, Message: "ok", Duration: time.Since(start)}
	if err != nil {
		res.Message = err.Error()
		res.Status = StatusDegraded
		if p.Required {
			res.Status = StatusUnhealthy
		}
	}
	return res
}

// Healthy reports whether the service can take traffic. Degraded counts.
func (r *Report) Healthy() bool {
	return r.Status != StatusUnhealthy
}

// Failed returns the checks that did not pass
func (r *Report) Failed() []CheckResult {
	var failed []CheckResult
	for _, c := range r.Checks {
		if c.Status != StatusHealthy {
			failed = append(failed, c)
		}
	}
	return failed
}

// String renders the report on one line, naming failed checks
func (r *Report) String() string {
	s := fmt.Sprintf("%s %s: %s (up %s)", r.Service, r.Version, r.Status, r.Uptime.Round(time.Second))
	if failed := r.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, c := range failed {
			names[i] = c.Name + "=" + c.Message
		}
		s += ", failing: " + strings.Join(names, ", ")
	}
	return s
}

// ErrorCheck is a required probe around fn
func ErrorCheck(name string, fn func(ctx context.Context) error) Probe {
	return Probe{Name: name, Required: true, Run: fn}
}

// DegradedCheck is an optional probe around fn, for dependencies the
// service can run without
func DegradedCheck(name string, fn func(ctx context.Context) error) Probe {
	return Probe{Name: name, Run: fn}
}
