package timetable

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/assignsat/assignsat/pkg/csp"
)

// Violation describes one scheduling rule a candidate solution
// breaks.
type Violation struct {
	Category csp.Category
	Message  string
}

func (v Violation) String() string {
	return v.Message
}

// Violations is the full audit result for one candidate solution.
type Violations []Violation

// Err aggregates all violations into a single error, or nil when the
// solution is valid.
func (vs Violations) Err() error {
	var err error
	for _, v := range vs {
		err = multierr.Append(err, errors.New(v.Message))
	}
	return err
}

// Validate re-checks a candidate timetable against the raw instance,
// independently of any encoding or solver answer.
func Validate(inst *Instance, sol Solution) (bool, Violations) {
	var violations Violations
	report := func(category csp.Category, format string, args ...interface{}) {
		violations = append(violations, Violation{Category: category, Message: fmt.Sprintf(format, args...)})
	}

	placed := make(map[int]Placement, len(sol))
	for _, p := range sol {
		placed[p.Exam] = p
	}
	for ex := 0; ex < inst.Exams; ex++ {
		if _, ok := placed[ex]; !ok {
			report(CategoryRoomTimeRange, "range violation: exam %d has no placement", ex)
		}
	}

	for _, p := range sol {
		if p.Exam < 0 || p.Exam >= inst.Exams {
			report(CategoryRoomTimeRange, "range violation: unknown exam %d", p.Exam)
			continue
		}
		if p.Slot < 0 || p.Slot >= inst.Slots {
			report(CategoryRoomTimeRange, "range violation: exam %d assigned slot %d outside [0, %d)", p.Exam, p.Slot, inst.Slots)
		}
		if p.Room < 0 || p.Room >= inst.Rooms {
			report(CategoryRoomTimeRange, "range violation: exam %d assigned room %d outside [0, %d)", p.Exam, p.Room, inst.Rooms)
		}
		if p.Invigilator < 0 || p.Invigilator >= inst.Invigilators {
			report(CategoryInvigilatorRange, "invigilator-range violation: exam %d assigned invigilator %d outside [0, %d)", p.Exam, p.Invigilator, inst.Invigilators)
		}
	}

	for i := 0; i < len(sol); i++ {
		for j := i + 1; j < len(sol); j++ {
			p1, p2 := sol[i], sol[j]
			if p1.Slot == p2.Slot && p1.Room == p2.Room {
				report(CategoryUniqueRoomTime, "uniqueness violation: exams %d and %d share room %d in slot %d", p1.Exam, p2.Exam, p1.Room, p1.Slot)
			}
			if p1.Invigilator == p2.Invigilator {
				report(CategoryInvigilatorUniq, "invigilator-uniqueness violation: exams %d and %d share invigilator %d", p1.Exam, p2.Exam, p1.Invigilator)
			}
		}
	}

	enrollments := inst.EnrollmentCounts()
	for _, p := range sol {
		if p.Exam < 0 || p.Exam >= inst.Exams || p.Room < 0 || p.Room >= inst.Rooms {
			continue
		}
		if enrollments[p.Exam] > inst.RoomCapacities[p.Room] {
			report(CategoryRoomCapacity, "capacity violation: exam %d with %d students placed in room %d of capacity %d", p.Exam, enrollments[p.Exam], p.Room, inst.RoomCapacities[p.Room])
		}
	}

	for student, exams := range inst.StudentExams() {
		for i := 0; i < len(exams); i++ {
			for j := i + 1; j < len(exams); j++ {
				p1, ok1 := placed[exams[i]]
				p2, ok2 := placed[exams[j]]
				if !ok1 || !ok2 {
					continue
				}
				if diff := p1.Slot - p2.Slot; diff <= slotGap && diff >= -slotGap {
					report(CategoryNonOverlap, "overlap violation: student %d sits exams %d and %d in adjacent slots %d and %d", student, p1.Exam, p2.Exam, p1.Slot, p2.Slot)
				}
			}
		}
	}

	return len(violations) == 0, violations
}
