package beanpod

import (
	"context"
	"fmt"
	"reflect"

	"github.com/xraph/go-utils/di"
	"go.uber.org/multierr"
)

// IssueKind classifies a configuration finding.
type IssueKind int

const (
	// IssueCyclicDependency marks a dependency cycle.
	IssueCyclicDependency IssueKind = iota
	// IssueUnresolvedDependency marks a dependency with no registration and no implementation.
	IssueUnresolvedDependency
	// IssueAmbiguousCapability marks a depended-on capability with several primary implementations.
	IssueAmbiguousCapability
)

// String returns the kind name.
func (k IssueKind) String() string {
	switch k {
	case IssueCyclicDependency:
		return "CyclicDependency"
	case IssueUnresolvedDependency:
		return "UnresolvedDependency"
	case IssueAmbiguousCapability:
		return "AmbiguousCapability"
	default:
		return "Unknown"
	}
}

// Issue is a non-fatal finding of ValidateConfiguration.
type Issue struct {
	Kind IssueKind

	// Component is the type whose definition has the problem. For cycles it
	// is the first type of the cycle.
	Component reflect.Type

	// Dependency is the unresolved type or the ambiguous capability.
	Dependency reflect.Type

	Cycle      []reflect.Type
	Candidates []reflect.Type
}

// Error implements error so issues can be aggregated.
func (i Issue) Error() string {
	switch i.Kind {
	case IssueCyclicDependency:
		return "circular dependency: " + formatPath(i.Cycle)
	case IssueUnresolvedDependency:
		return fmt.Sprintf("unresolved dependency: %s -> %s", typeName(i.Component), typeName(i.Dependency))
	case IssueAmbiguousCapability:
		return fmt.Sprintf("ambiguous capability: %s -> %s has primaries %s",
			typeName(i.Component), typeName(i.Dependency), formatList(i.Candidates))
	default:
		return "unknown issue"
	}
}

// DependencyGraph builds the static graph of the registry. Dependencies are
// followed the way GetBean would follow them; unresolved and ambiguous ones
// are left out.
func (c *Container) DependencyGraph() *DependencyGraph {
	g := NewDependencyGraph()

	for _, d := range c.registry.snapshot() {
		t := d.component.Type

		targets := make([]reflect.Type, 0, len(d.deps))
		for _, dep := range d.deps {
			if target, err := c.describe(dep.Type); err == nil {
				targets = append(targets, target.component.Type)
			}
		}

		g.AddNode(t, targets)
	}

	return g
}

// ValidateConfiguration checks the whole registry without constructing
// anything: dependency cycles first, then unresolved dependencies, then
// ambiguous capabilities, each in registration order. It never fails.
func (c *Container) ValidateConfiguration() []Issue {
	var issues []Issue

	for _, cycle := range c.DependencyGraph().Cycles() {
		issues = append(issues, Issue{
			Kind:      IssueCyclicDependency,
			Component: cycle[0],
			Cycle:     cycle,
		})
	}

	var ambiguous []Issue
	reported := make(map[reflect.Type]bool)

	for _, d := range c.registry.snapshot() {
		t := d.component.Type

		for _, dep := range d.deps {
			_, err := c.describe(dep.Type)
			if err == nil {
				continue
			}

			switch ErrorCode(err) {
			case CodeBeanNotFound:
				issues = append(issues, Issue{
					Kind:       IssueUnresolvedDependency,
					Component:  t,
					Dependency: dep.Type,
				})
			case CodeAmbiguousCapability:
				if reported[dep.Type] {
					continue
				}
				reported[dep.Type] = true
				candidates, _ := CandidatesOf(err)
				ambiguous = append(ambiguous, Issue{
					Kind:       IssueAmbiguousCapability,
					Component:  t,
					Dependency: dep.Type,
					Candidates: candidates,
				})
			}
		}
	}

	return append(issues, ambiguous...)
}

// Health returns the configuration issues combined into one error, or nil when
// the registry is consistent. Safe to call as a health check.
func (c *Container) Health() error {
	var err error
	for _, issue := range c.ValidateConfiguration() {
		err = multierr.Append(err, issue)
	}
	return err
}

// CheckHealth runs Health, then asks every published singleton implementing
// di.HealthChecker for its health, in registration order. Singletons that were
// never resolved are skipped; nothing is constructed. All failures are combined.
func (c *Container) CheckHealth(ctx context.Context) error {
	err := c.Health()

	for _, d := range c.registry.snapshot() {
		instance, ok := d.load()
		if !ok {
			continue
		}

		checker, ok := instance.(di.HealthChecker)
		if !ok {
			continue
		}

		if herr := checker.Health(ctx); herr != nil {
			err = multierr.Append(err, newHealthError(d.component.Type, herr))
		}
	}

	return err
}
