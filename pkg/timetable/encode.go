package timetable

import (
	"fmt"
	"sort"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/constraint"
)

// slotGap is the minimum slot distance between two exams of one
// student; adjacent slots count as overlapping.
const slotGap = 1

func slotVarID(exam int) csp.Identifier {
	return csp.Identifierf("slot%d", exam)
}

func roomVarID(exam int) csp.Identifier {
	return csp.Identifierf("room%d", exam)
}

func invVarID(exam int) csp.Identifier {
	return csp.Identifierf("inv%d", exam)
}

// Encode lowers the instance to a Model of one (slot, room,
// invigilator) int triple per exam. Every constraint carries a
// structured label naming its category and the exam, room or student
// indices involved, so an unsat core maps straight back to instance
// facts.
func Encode(inst *Instance) *csp.Model {
	slots := make([]csp.Variable, inst.Exams)
	rooms := make([]csp.Variable, inst.Exams)
	invs := make([]csp.Variable, inst.Exams)
	for ex := 0; ex < inst.Exams; ex++ {
		slots[ex] = csp.IntVar(slotVarID(ex), 0, inst.Slots-1)
		rooms[ex] = csp.IntVar(roomVarID(ex), 0, inst.Rooms-1)
		invs[ex] = csp.IntVar(invVarID(ex), 0, inst.Invigilators-1)
	}

	m := &csp.Model{}
	m.Variables = append(m.Variables, slots...)
	m.Variables = append(m.Variables, rooms...)
	m.Variables = append(m.Variables, invs...)

	for ex := 0; ex < inst.Exams; ex++ {
		m.Constraints = append(m.Constraints, constraint.InBounds(
			csp.NewLabel(CategoryRoomTimeRange, ex),
			fmt.Sprintf("room and time in range for exam %d", ex),
			slots[ex], rooms[ex],
		))
	}

	for e1 := 0; e1 < inst.Exams; e1++ {
		for e2 := e1 + 1; e2 < inst.Exams; e2++ {
			m.Constraints = append(m.Constraints, constraint.EitherDiffers(
				csp.NewLabel(CategoryUniqueRoomTime, e1, e2),
				fmt.Sprintf("unique room and time between exams %d and %d", e1, e2),
				slots[e1], slots[e2], rooms[e1], rooms[e2],
			))
		}
	}

	// One capacity constraint per (exam, room) pair rather than one
	// global check, so a core implicates the offending room.
	enrollments := inst.EnrollmentCounts()
	for ex := 0; ex < inst.Exams; ex++ {
		for r := 0; r < inst.Rooms; r++ {
			m.Constraints = append(m.Constraints, constraint.ValueAllowed(
				csp.NewLabel(CategoryRoomCapacity, ex, r),
				fmt.Sprintf("room capacity for exam %d in room %d", ex, r),
				rooms[ex], r, enrollments[ex] <= inst.RoomCapacities[r],
			))
		}
	}

	byStudent := inst.StudentExams()
	students := make([]int, 0, len(byStudent))
	for student := range byStudent {
		students = append(students, student)
	}
	sort.Ints(students)
	for _, student := range students {
		exams := byStudent[student]
		sort.Ints(exams)
		for i := 0; i < len(exams); i++ {
			for j := i + 1; j < len(exams); j++ {
				e1, e2 := exams[i], exams[j]
				m.Constraints = append(m.Constraints, constraint.Separated(
					csp.NewLabel(CategoryNonOverlap, student, e1, e2),
					fmt.Sprintf("student %d non-overlapping exams %d and %d", student, e1, e2),
					slots[e1], slots[e2], slotGap,
				))
			}
		}
	}

	for ex := 0; ex < inst.Exams; ex++ {
		m.Constraints = append(m.Constraints, constraint.InBounds(
			csp.NewLabel(CategoryInvigilatorRange, ex),
			fmt.Sprintf("invigilator in range for exam %d", ex),
			invs[ex],
		))
	}
	for e1 := 0; e1 < inst.Exams; e1++ {
		for e2 := e1 + 1; e2 < inst.Exams; e2++ {
			m.Constraints = append(m.Constraints, constraint.IntNe(
				csp.NewLabel(CategoryInvigilatorUniq, e1, e2),
				fmt.Sprintf("invigilator uniqueness between exams %d and %d", e1, e2),
				invs[e1], invs[e2],
			))
		}
	}

	return m
}

// DecodeSolution maps a satisfying assignment back to one placement
// per exam.
func DecodeSolution(inst *Instance, asg csp.Assignment) Solution {
	sol := make(Solution, inst.Exams)
	for ex := 0; ex < inst.Exams; ex++ {
		sol[ex] = Placement{
			Exam:        ex,
			Slot:        asg[slotVarID(ex)],
			Room:        asg[roomVarID(ex)],
			Invigilator: asg[invVarID(ex)],
		}
	}
	return sol
}
