package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default refresh intervals per resource.
const (
	DefaultWorkflowsInterval  = 10 * time.Second
	DefaultStatsInterval      = 5 * time.Second
	DefaultExecutionsInterval = 3 * time.Second
	DefaultRecentInterval     = 2 * time.Second

	DefaultExecutionLimit = 50
	DefaultRecentLimit    = 10
)

// Event reasons carried by FlowEvent.
const (
	ReasonPoll       = "poll"
	ReasonRevalidate = "revalidate"
)

// ErrUnknownResource is returned when revalidating a resource the poller does not track.
var ErrUnknownResource = errors.New("dashboard: unknown resource")

// Snapshot is the last fetched value of a polled resource.
type Snapshot[T any] struct {
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Loading reports whether nothing has been fetched yet.
func (s Snapshot[T]) Loading() bool {
	return !s.HasData && s.Err == nil
}

// IsError reports whether the most recent fetch failed.
func (s Snapshot[T]) IsError() bool {
	return s.Err != nil
}

// next applies a fetch outcome. A failure keeps the previous data.
func (s Snapshot[T]) next(data T, err error, at time.Time) Snapshot[T] {
	if err != nil {
		s.Err = err
		return s
	}
	return Snapshot[T]{Data: data, HasData: true, UpdatedAt: at}
}

// ResourceStatus is the serializable state of a snapshot.
type ResourceStatus struct {
	Resource  Resource  `json:"resource"`
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func statusOf[T any](resource Resource, s Snapshot[T]) ResourceStatus {
	status := ResourceStatus{Resource: resource, Loading: s.Loading(), UpdatedAt: s.UpdatedAt}
	if s.Err != nil {
		status.Error = s.Err.Error()
	}
	return status
}

// PollIntervals configures the ticker of each resource.
type PollIntervals struct {
	Workflows  time.Duration
	Stats      time.Duration
	Executions time.Duration
	Recent     time.Duration
}

// DefaultPollIntervals returns 10s/5s/3s/2s.
func DefaultPollIntervals() PollIntervals {
	return PollIntervals{
		Workflows:  DefaultWorkflowsInterval,
		Stats:      DefaultStatsInterval,
		Executions: DefaultExecutionsInterval,
		Recent:     DefaultRecentInterval,
	}
}

// For returns the interval of resource, falling back to the default.
func (p PollIntervals) For(resource Resource) time.Duration {
	defaults := DefaultPollIntervals()
	var value, fallback time.Duration
	switch resource {
	case ResourceWorkflows:
		value, fallback = p.Workflows, defaults.Workflows
	case ResourceStats:
		value, fallback = p.Stats, defaults.Stats
	case ResourceExecutions:
		value, fallback = p.Executions, defaults.Executions
	case ResourceRecent:
		value, fallback = p.Recent, defaults.Recent
	}
	if value <= 0 {
		return fallback
	}
	return value
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Source         Source
	Intervals      PollIntervals
	WorkflowQuery  WorkflowQuery
	ExecutionLimit int
	RecentLimit    int
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	Now            func() time.Time
}

// Poller keeps the latest snapshot of every resource, refreshing each one on
// its own ticker.
type Poller struct {
	opts PollerOptions

	mu         sync.RWMutex
	workflows  Snapshot[[]Workflow]
	stats      Snapshot[DashboardStats]
	executions Snapshot[[]Execution]
	recent     Snapshot[[]Execution]

	flightMu sync.Mutex
	inflight map[Resource]bool
}

// NewPoller builds a poller. It does not fetch until Start or Revalidate is called.
func NewPoller(opts PollerOptions) *Poller {
	if opts.ExecutionLimit <= 0 {
		opts.ExecutionLimit = DefaultExecutionLimit
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.RefreshHook = normalizeRefreshHook(opts.RefreshHook)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Poller{
		opts:     opts,
		inflight: make(map[Resource]bool, len(Resources())),
	}
}

// Start polls every resource until ctx is cancelled. Each resource is fetched
// immediately and then on its interval; a failing resource never blocks the rest.
func (p *Poller) Start(ctx context.Context) error {
	if p.opts.Source == nil {
		return ErrSourceNotConfigured
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, resource := range Resources() {
		interval := p.opts.Intervals.For(resource)
		g.Go(func() error {
			p.loop(gctx, resource, interval)
			return nil
		})
	}
	return g.Wait()
}

func (p *Poller) loop(ctx context.Context, resource Resource, interval time.Duration) {
	p.tick(ctx, resource)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, resource)
		}
	}
}

// tick skips the fetch when the previous one for the same resource is still running.
func (p *Poller) tick(ctx context.Context, resource Resource) {
	if !p.acquire(resource) {
		return
	}
	defer p.release(resource)
	_ = p.fetch(ctx, resource, ReasonPoll)
}

func (p *Poller) acquire(resource Resource) bool {
	p.flightMu.Lock()
	defer p.flightMu.Unlock()
	if p.inflight[resource] {
		return false
	}
	p.inflight[resource] = true
	return true
}

func (p *Poller) release(resource Resource) {
	p.flightMu.Lock()
	delete(p.inflight, resource)
	p.flightMu.Unlock()
}

// Revalidate fetches resource now, regardless of its ticker.
func (p *Poller) Revalidate(ctx context.Context, resource Resource) error {
	if p.opts.Source == nil {
		return ErrSourceNotConfigured
	}
	return p.fetch(ctx, resource, ReasonRevalidate)
}

// RevalidateAll refreshes every resource and joins the failures.
func (p *Poller) RevalidateAll(ctx context.Context) error {
	var errs []error
	for _, resource := range Resources() {
		if err := p.Revalidate(ctx, resource); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Poller) fetch(ctx context.Context, resource Resource, reason string) error {
	start := time.Now()
	src := p.opts.Source
	var err error
	switch resource {
	case ResourceWorkflows:
		err = storeSnapshot(p, &p.workflows, func() ([]Workflow, error) {
			return src.Workflows(ctx, p.opts.WorkflowQuery)
		})
	case ResourceStats:
		err = storeSnapshot(p, &p.stats, func() (DashboardStats, error) {
			return src.Stats(ctx)
		})
	case ResourceExecutions:
		err = storeSnapshot(p, &p.executions, func() ([]Execution, error) {
			return src.Executions(ctx, ExecutionQuery{Limit: p.opts.ExecutionLimit})
		})
	case ResourceRecent:
		err = storeSnapshot(p, &p.recent, func() ([]Execution, error) {
			return src.RecentExecutions(ctx, p.opts.RecentLimit)
		})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}

	event := FlowEvent{Resource: resource, Reason: reason, At: p.opts.Now()}
	payload := map[string]any{
		"resource":    string(resource),
		"reason":      reason,
		"duration_ms": elapsedMillis(start),
	}
	if err != nil {
		event.Error = err.Error()
		payload["error"] = err.Error()
	}
	if hookErr := p.opts.RefreshHook.ResourceUpdated(ctx, event); hookErr != nil {
		payload["hook_error"] = hookErr.Error()
	}
	p.opts.Telemetry.Record(ctx, "dashboard.poll", payload)
	return err
}

func storeSnapshot[T any](p *Poller, snap *Snapshot[T], fetch func() (T, error)) error {
	data, err := fetch()
	now := p.opts.Now()
	p.mu.Lock()
	*snap = snap.next(data, err, now)
	p.mu.Unlock()
	return err
}

// Workflows returns the current workflows snapshot. The slice is a copy.
func (p *Poller) Workflows() Snapshot[[]Workflow] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.workflows
	snap.Data = append([]Workflow(nil), snap.Data...)
	return snap
}

// Stats returns the current stats snapshot.
func (p *Poller) Stats() Snapshot[DashboardStats] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Executions returns the current executions snapshot. The slice is a copy.
func (p *Poller) Executions() Snapshot[[]Execution] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.executions
	snap.Data = append([]Execution(nil), snap.Data...)
	return snap
}

// Recent returns the current recent-executions snapshot. The slice is a copy.
func (p *Poller) Recent() Snapshot[[]Execution] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.recent
	snap.Data = append([]Execution(nil), snap.Data...)
	return snap
}

// Status reports loading and error state for every resource in display order.
func (p *Poller) Status() []ResourceStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return []ResourceStatus{
		statusOf(ResourceWorkflows, p.workflows),
		statusOf(ResourceStats, p.stats),
		statusOf(ResourceExecutions, p.executions),
		statusOf(ResourceRecent, p.recent),
	}
}

// ParseResource validates a resource name from user input.
func ParseResource(value string) (Resource, error) {
	for _, resource := range Resources() {
		if string(resource) == value {
			return resource, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, value)
}
