package timetable

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/solver"
)

// DefaultMaxRounds bounds the repair loop. Relaxation is monotonic
// but not guaranteed to converge, so an explicit cap turns a
// potential livelock into an unrepairable verdict.
const DefaultMaxRounds = 16

// roomCapacityStep is the capacity added to an implicated room per
// repair round.
const roomCapacityStep = 5

// ErrUnrepairable reports a terminal infeasibility: the instance is
// UNSAT and no relaxation rule applies (or the round cap is reached).
var ErrUnrepairable = errors.New("instance is not satisfiable and no repair applies; revise the instance data manually")

// ActionKind enumerates the relaxations the repair loop may apply.
type ActionKind string

const (
	IncreaseSlots        ActionKind = "increase-slots"
	IncreaseInvigilators ActionKind = "increase-invigilators"
	IncreaseRoomCapacity ActionKind = "increase-room-capacity"
)

// Action is one relaxation applied during one repair round.
type Action struct {
	Round int
	Kind  ActionKind
	// Room is the implicated room for IncreaseRoomCapacity, -1
	// otherwise.
	Room  int
	Delta int
}

func (a Action) String() string {
	if a.Kind == IncreaseRoomCapacity {
		return fmt.Sprintf("round %d: increased capacity of room %d by %d", a.Round, a.Room, a.Delta)
	}
	return fmt.Sprintf("round %d: %s by %d", a.Round, a.Kind, a.Delta)
}

// Report is the audit trail of a repair run: every action applied
// plus the accumulated deltas from the original instance.
type Report struct {
	Rounds  int
	Actions []Action

	SlotsAdded        int
	InvigilatorsAdded int
	// RoomCapacityAdded maps room number to total added capacity.
	RoomCapacityAdded map[int]int
}

// Repaired reports whether any relaxation was applied.
func (r *Report) Repaired() bool {
	return len(r.Actions) > 0
}

// Resolver runs the encode-check-relax loop until the instance
// admits a solution or no repair rule applies.
type Resolver struct {
	Solver    *solver.Solver
	MaxRounds int
}

// Resolve repeatedly checks the instance and relaxes it on UNSAT,
// dispatching on the categories of the unsat core. The caller's
// instance is never mutated; the returned instance carries the
// accumulated relaxations and the outcome holds the satisfying
// assignment of the final attempt.
func (r *Resolver) Resolve(ctx context.Context, inst *Instance) (*Instance, *csp.Outcome, *Report, error) {
	maxRounds := r.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	cur := inst.Clone()
	report := &Report{RoomCapacityAdded: map[int]int{}}
	for {
		m := Encode(cur)
		glog.V(1).Infof("encoded %d exams into %d variables and %d constraints (slots=%d rooms=%d invigilators=%d)",
			cur.Exams, len(m.Variables), len(m.Constraints), cur.Slots, cur.Rooms, cur.Invigilators)
		out, err := r.Solver.Check(ctx, m)
		if err != nil {
			return nil, nil, nil, err
		}
		switch out.Status {
		case csp.StatusSat:
			return cur, out, report, nil
		case csp.StatusUnknown:
			return nil, nil, nil, fmt.Errorf("solver gave no verdict after %d repair rounds", report.Rounds)
		}

		if report.Rounds >= maxRounds {
			return nil, nil, nil, fmt.Errorf("still unsatisfiable after %d repair rounds: %w", report.Rounds, ErrUnrepairable)
		}
		report.Rounds++
		if !r.relax(cur, out.Core, report) {
			return nil, nil, nil, ErrUnrepairable
		}
	}
}

// relax applies at most one action per conflict category to the
// instance and reports whether anything changed.
func (r *Resolver) relax(inst *Instance, core []csp.Constraint, report *Report) bool {
	slotConflict := false
	invigilatorConflict := false
	rooms := map[int]bool{}
	for _, c := range core {
		label := c.Label()
		switch label.Category {
		case CategoryNonOverlap, CategoryRoomTimeRange, CategoryUniqueRoomTime:
			// Two exams contending for the same room and slot are
			// relieved by another slot just as overlap conflicts are.
			slotConflict = true
		case CategoryInvigilatorRange, CategoryInvigilatorUniq:
			invigilatorConflict = true
		case CategoryRoomCapacity:
			// Operands are (exam, room).
			rooms[label.Operands[1]] = true
		}
	}

	applied := false
	if slotConflict {
		inst.Slots++
		report.SlotsAdded++
		report.Actions = append(report.Actions, Action{Round: report.Rounds, Kind: IncreaseSlots, Room: -1, Delta: 1})
		applied = true
	}
	if invigilatorConflict {
		inst.Invigilators++
		report.InvigilatorsAdded++
		report.Actions = append(report.Actions, Action{Round: report.Rounds, Kind: IncreaseInvigilators, Room: -1, Delta: 1})
		applied = true
	}
	for room := 0; room < len(inst.RoomCapacities); room++ {
		if !rooms[room] {
			continue
		}
		inst.RoomCapacities[room] += roomCapacityStep
		report.RoomCapacityAdded[room] += roomCapacityStep
		report.Actions = append(report.Actions, Action{Round: report.Rounds, Kind: IncreaseRoomCapacity, Room: room, Delta: roomCapacityStep})
		applied = true
	}

	if glog.V(1) {
		for _, a := range report.Actions {
			if a.Round == report.Rounds {
				glog.Infof("repair %s", a)
			}
		}
	}
	return applied
}
