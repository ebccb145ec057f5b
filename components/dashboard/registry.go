package dashboard

import (
	"fmt"
	"sync"
)

// SectionHook lets packages adjust plans during init().
type SectionHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []SectionHook
)

// RegisterSectionHook registers a hook executed against new registries.
func RegisterSectionHook(h SectionHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds one plan per section.
type Registry struct {
	mu    sync.RWMutex
	plans map[Section]SectionPlan
}

// NewRegistry builds a registry with the default plans and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{plans: map[Section]SectionPlan{}}
	for _, plan := range DefaultSectionPlans() {
		_ = reg.RegisterPlan(plan)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered section hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPlan stores or replaces the plan for its section.
func (r *Registry) RegisterPlan(plan SectionPlan) error {
	if plan.Section == "" {
		return fmt.Errorf("dashboard: section plan requires a section")
	}
	if _, err := ParseSection(string(plan.Section)); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for _, binding := range plan.Bindings() {
		if binding == "" {
			return fmt.Errorf("dashboard: section %s has an empty binding", plan.Section)
		}
		if _, dup := seen[binding]; dup {
			return fmt.Errorf("dashboard: section %s binds %s twice", plan.Section, binding)
		}
		seen[binding] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.Section] = plan
	return nil
}

// Plan fetches the plan for section.
func (r *Registry) Plan(section Section) (SectionPlan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[section]
	return plan, ok
}

// Plans returns plans in navigation order.
func (r *Registry) Plans() []SectionPlan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SectionPlan, 0, len(r.plans))
	for _, section := range Sections() {
		if plan, ok := r.plans[section]; ok {
			out = append(out, plan)
		}
	}
	return out
}

// Owner returns the section owning binding.
func (r *Registry) Owner(binding string) (Section, bool) {
	for _, plan := range r.Plans() {
		for _, b := range plan.Bindings() {
			if b == binding {
				return plan.Section, true
			}
		}
	}
	return "", false
}
