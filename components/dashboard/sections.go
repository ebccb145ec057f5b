package dashboard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Policy decides whether a requirement refetches or reuses a cached snapshot.
type Policy int

const (
	// PolicyForce always fetches.
	PolicyForce Policy = iota
	// PolicyReuse skips the fetch when the kind is already cached.
	PolicyReuse
)

// Requirement is one Data Client call a section depends on.
type Requirement struct {
	Kind   Kind
	Policy Policy
	Params func(PlanContext) map[string]string
}

func (r Requirement) request(pc PlanContext) Request {
	req := Request{Kind: r.Kind}
	if r.Params != nil {
		req.Params = r.Params(pc)
	}
	return req
}

// ChartBinding builds the dataset for one chart mount.
type ChartBinding struct {
	Mount string
	Build func(Results, PlanContext) (Dataset, bool)
}

// PanelBinding builds the content for one panel region.
type PanelBinding struct {
	Binding string
	Build   func(Results, PlanContext) (any, bool)
}

// SectionPlan declares what a section fetches and which outputs it owns.
type SectionPlan struct {
	Section      Section
	Requirements []Requirement
	Charts       []ChartBinding
	Panels       []PanelBinding
}

// Bindings lists every output the plan owns, charts first.
func (p SectionPlan) Bindings() []string {
	out := make([]string, 0, len(p.Charts)+len(p.Panels))
	for _, c := range p.Charts {
		out = append(out, c.Mount)
	}
	for _, b := range p.Panels {
		out = append(out, b.Binding)
	}
	return out
}

// fetchJob is one request issued with the sequence number it will be cached under.
type fetchJob struct {
	Request Request
	Seq     uint64
}

// fetched is a completed fetch.
type fetched struct {
	Kind     Kind
	Seq      uint64
	Snapshot Snapshot
}

// loadResult is the outcome of fetching a plan: everything that succeeded plus the
// first failure, if any.
type loadResult struct {
	Fetched []fetched
	Reused  Results
	Err     error
}

// results merges fetched and reused snapshots.
func (r loadResult) results() Results {
	out := make(Results, len(r.Fetched)+len(r.Reused))
	for kind, snap := range r.Reused {
		out[kind] = snap
	}
	for _, f := range r.Fetched {
		out[f.Kind] = f.Snapshot
	}
	return out
}

// SectionController runs section plans: fetch concurrently, then render charts and panels.
type SectionController struct {
	client   DataClient
	registry *Registry
	charts   *ChartRenderer
	surface  Surface
	limit    int
}

// NewSectionController wires a controller.
func NewSectionController(client DataClient, registry *Registry, charts *ChartRenderer, surface Surface) *SectionController {
	if registry == nil {
		registry = NewRegistry()
	}
	return &SectionController{
		client:   client,
		registry: registry,
		charts:   charts,
		surface:  surface,
		limit:    4,
	}
}

// Plan returns the plan registered for section.
func (c *SectionController) Plan(section Section) (SectionPlan, error) {
	plan, ok := c.registry.Plan(section)
	if !ok {
		return SectionPlan{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return plan, nil
}

// prepare resolves which requirements hit the backend. It reads the cache and issues
// sequence numbers, so callers must hold the driver lock.
func (c *SectionController) prepare(plan SectionPlan, state *ViewState, pc PlanContext) ([]fetchJob, Results) {
	jobs := make([]fetchJob, 0, len(plan.Requirements))
	reused := make(Results)
	for _, req := range plan.Requirements {
		if req.Policy == PolicyReuse {
			if snap, ok := state.CachedSnapshot(req.Kind); ok {
				reused[req.Kind] = snap
				continue
			}
		}
		jobs = append(jobs, fetchJob{Request: req.request(pc), Seq: state.nextSequence()})
	}
	return jobs, reused
}

// fetch issues every job concurrently. Failed siblings never cancel the others; every
// job runs to completion and successes are reported alongside the first failure.
func (c *SectionController) fetch(ctx context.Context, jobs []fetchJob) ([]fetched, error) {
	if c.client == nil {
		return nil, errNilDataClient
	}
	out := make([]fetched, len(jobs))
	ok := make([]bool, len(jobs))
	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			snap, err := c.client.Fetch(ctx, job.Request)
			if err != nil {
				var fe *FetchError
				if !errors.As(err, &fe) {
					err = &FetchError{Kind: job.Request.Kind, Err: err}
				}
				return err
			}
			if snap == nil || snap.Kind() != job.Request.Kind {
				return &FetchError{Kind: job.Request.Kind, Err: fmt.Errorf("unexpected snapshot %T", snap)}
			}
			out[i] = fetched{Kind: job.Request.Kind, Seq: job.Seq, Snapshot: snap}
			ok[i] = true
			return nil
		})
	}
	err := g.Wait()
	succeeded := make([]fetched, 0, len(jobs))
	for i := range out {
		if ok[i] {
			succeeded = append(succeeded, out[i])
		}
	}
	return succeeded, err
}

// Render draws the plan's charts and then its panels from results. Only bindings
// present on the surface are touched. Chart failures do not stop the remaining outputs.
func (c *SectionController) Render(plan SectionPlan, results Results, pc PlanContext) error {
	var errs []error
	for _, chart := range plan.Charts {
		if c.surface != nil && !c.surface.Has(chart.Mount) {
			continue
		}
		data, ok := chart.Build(results, pc)
		if !ok {
			continue
		}
		if c.charts != nil {
			if err := c.charts.Render(chart.Mount, data); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if c.surface == nil {
		return errors.Join(errs...)
	}
	for _, panel := range plan.Panels {
		if !c.surface.Has(panel.Binding) {
			continue
		}
		content, ok := panel.Build(results, pc)
		if !ok {
			continue
		}
		if table, isTable := content.(Table); isTable {
			content = c.keepSort(panel.Binding, table)
		}
		c.surface.Write(panel.Binding, content)
	}
	return errors.Join(errs...)
}

// keepSort reapplies the active sort of the table being replaced.
func (c *SectionController) keepSort(binding string, next Table) Table {
	prev, ok := c.surface.Read(binding)
	if !ok {
		return next
	}
	old, ok := prev.(Table)
	if !ok || old.SortOrder == SortNone {
		return next
	}
	return SortTableRows(next, old.SortBy, old.SortOrder)
}
