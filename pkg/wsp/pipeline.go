package wsp

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/solver"
)

// Options configure a WSP run.
type Options struct {
	// Encoding selects the constraint encoding: "matrix" or "int".
	Encoding string
	// Limit is the number of pairwise-distinct solutions to look
	// for.
	Limit int
	// Timeout is the wall-clock budget of the enumeration.
	Timeout time.Duration
}

// Result is the outcome of a WSP run.
type Result struct {
	Status    csp.Status
	Solutions []Solution
	// Core holds the infeasible constraint subset on StatusUnsat.
	Core []csp.Constraint
	// Incomplete is set when the enumeration timed out: the
	// solutions found are valid but possibly not all of them.
	Incomplete bool
	Elapsed    time.Duration
}

// Solve runs the full pipeline over one instance: encode, check with
// core production, enumerate distinct solutions, and validate every
// candidate against the raw facts before it is surfaced. WSP has no
// repair rules, so an UNSAT verdict is terminal and carries the core.
func Solve(ctx context.Context, inst *Instance, opts Options) (*Result, error) {
	enc, err := NewEncoder(opts.Encoding)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}

	start := time.Now()
	s := solver.New()

	// Core-producing check first; a Model is single-use, so the
	// enumeration below re-encodes.
	m := enc.Encode(inst)
	glog.V(1).Infof("encoded %d steps over %d users into %d variables and %d constraints",
		inst.Steps, inst.Users, len(m.Variables), len(m.Constraints))
	out, err := s.Check(ctx, m)
	if err != nil {
		return nil, err
	}
	result := &Result{Status: out.Status, Elapsed: time.Since(start)}
	if out.Status != csp.StatusSat {
		result.Core = out.Core
		return result, nil
	}

	enum, err := s.Enumerate(ctx, enc.Encode(inst), limit, opts.Timeout)
	if err != nil {
		return nil, err
	}
	result.Incomplete = enum.TimedOut
	for _, asg := range enum.Assignments {
		sol := enc.Decode(asg)
		if ok, violations := Validate(inst, sol); !ok {
			// An engine answer the validator rejects means
			// the encoder and the engine disagree; that is
			// a bug, not a bad instance.
			glog.Errorf("solver produced an invalid solution, excluding it: %v", violations.Err())
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
