package timetable

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/solver"
)

// Options configure a timetabling run.
type Options struct {
	// Limit is the number of pairwise-distinct solutions to look
	// for.
	Limit int
	// Timeout is the wall-clock budget of the enumeration.
	Timeout time.Duration
	// MaxRounds caps the repair loop; zero means DefaultMaxRounds.
	MaxRounds int
}

// Result is the outcome of a timetabling run.
type Result struct {
	Status    csp.Status
	Solutions []Solution
	// Repaired is the relaxed instance the solutions satisfy; equal
	// to the input parameters when no repair was needed.
	Repaired *Instance
	// Report is the repair audit trail.
	Report *Report
	// Incomplete is set when the enumeration timed out: the
	// solutions found are valid but possibly not all of them.
	Incomplete bool
	Elapsed    time.Duration
}

// Solve runs the full pipeline over one instance: encode, repair on
// infeasibility, enumerate distinct solutions of the (possibly
// relaxed) instance, and validate every candidate against the raw
// facts before it is surfaced.
func Solve(ctx context.Context, inst *Instance, opts Options) (*Result, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}

	start := time.Now()
	s := solver.New()
	resolver := &Resolver{Solver: s, MaxRounds: opts.MaxRounds}

	repaired, out, report, err := resolver.Resolve(ctx, inst)
	if err != nil {
		return nil, err
	}

	enum, err := s.Enumerate(ctx, Encode(repaired), limit, opts.Timeout)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Status:     out.Status,
		Repaired:   repaired,
		Report:     report,
		Incomplete: enum.TimedOut,
	}
	for _, asg := range enum.Assignments {
		sol := DecodeSolution(repaired, asg)
		if ok, violations := Validate(repaired, sol); !ok {
			// An engine answer the validator rejects means the
			// encoder and the engine disagree; that is a bug,
			// not a bad instance.
			glog.Errorf("solver produced an invalid timetable, excluding it: %v", violations.Err())
			continue
		}
		result.Solutions = append(result.Solutions, sol)
	}
	if len(result.Solutions) == 0 && len(enum.Assignments) > 0 {
		return nil, fmt.Errorf("all %d enumerated solutions failed validation", len(enum.Assignments))
	}
	result.Elapsed = time.Since(start)
	return result, nil
}
