// Package solver adapts Models to the external SAT engine. It exposes
// exactly two operations, Check and Enumerate, each of which builds a
// fresh solving session: no engine state survives between attempts,
// so repair rounds can never leak stale constraints into each other.
package solver

import (
	"context"
	"time"

	"github.com/go-air/gini"

	"github.com/assignsat/assignsat/pkg/csp"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
	unknown       = 0
)

// Solver is the adapter in front of the solving engine.
type Solver struct{}

func New() *Solver {
	return &Solver{}
}

// Check runs a single core-producing satisfiability check over the
// Model. On SAT the Outcome carries the assignment; on UNSAT it
// carries the subset of labeled constraints the engine reports as
// jointly infeasible.
func (s *Solver) Check(ctx context.Context, m *csp.Model) (*csp.Outcome, error) {
	g := gini.New()
	lm, err := newLitMapping(m)
	if err != nil {
		return nil, err
	}
	lm.AddStructure(g)
	lm.AssumeConstraints(g)

	out := &csp.Outcome{}
	switch solve(ctx, g) {
	case satisfiable:
		out.Status = csp.StatusSat
		out.Assignment = lm.Assignment(g)
	case unsatisfiable:
		out.Status = csp.StatusUnsat
		out.Core = lm.Conflicts(g)
	default:
		out.Status = csp.StatusUnknown
	}

	// A lit mapping error indicates a bug in an encoder, so
	// discard whatever outcome was produced.
	if derr := lm.Error(); derr != nil {
		return nil, derr
	}
	return out, nil
}

// Enumeration is the result of an Enumerate call. Exactly one of
// Exhausted and TimedOut is set when fewer than limit assignments
// come back: Exhausted means the search space holds no further
// solutions, TimedOut means the engine gave up and the enumeration
// may be incomplete.
type Enumeration struct {
	Assignments []csp.Assignment
	Exhausted   bool
	TimedOut    bool
}

// Enumerate produces up to limit pairwise-distinct assignments of the
// Model within the wall-clock budget. After each answer a blocking
// clause forbids the exact assignment found; every answer is also
// re-checked for novelty by value equality before it counts, in case
// the engine returns a logically identical model under a different
// internal ordering.
func (s *Solver) Enumerate(ctx context.Context, m *csp.Model, limit int, timeout time.Duration) (*Enumeration, error) {
	g := gini.New()
	lm, err := newLitMapping(m)
	if err != nil {
		return nil, err
	}
	lm.AddStructure(g)

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	enum := &Enumeration{}
	for len(enum.Assignments) < limit {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			enum.TimedOut = true
			break
		}
		lm.AssumeConstraints(g)
		switch g.GoSolve().Try(remaining) {
		case satisfiable:
			asg := lm.Assignment(g)
			if derr := lm.Error(); derr != nil {
				return nil, derr
			}
			novel := true
			for _, seen := range enum.Assignments {
				if seen.Equal(asg) {
					novel = false
					break
				}
			}
			if novel {
				enum.Assignments = append(enum.Assignments, asg)
			}
			lm.BlockAssignment(g, asg)
		case unsatisfiable:
			enum.Exhausted = true
			return enum, nil
		default:
			enum.TimedOut = true
			return enum, nil
		}
	}
	return enum, nil
}

func solve(ctx context.Context, g *gini.Gini) int {
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return unknown
		}
		return g.GoSolve().Try(remaining)
	}
	return g.Solve()
}
