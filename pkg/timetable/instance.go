// Package timetable models exam timetabling: every exam gets a
// (slot, room, invigilator) triple under room-capacity, uniqueness
// and student-overlap rules. Slots, rooms and invigilators are
// numbered from 0, matching the instance dialect.
package timetable

import (
	"fmt"

	"github.com/assignsat/assignsat/pkg/csp"
)

// DefaultInvigilators is the invigilator pool size of instances whose
// header declares none.
const DefaultInvigilators = 3

// Constraint categories of the timetabling domain. The encoder emits
// structured labels carrying one of these; the repair loop dispatches
// on them.
const (
	CategoryRoomTimeRange    csp.Category = "room-time-range"
	CategoryUniqueRoomTime   csp.Category = "unique-room-time"
	CategoryRoomCapacity     csp.Category = "room-capacity"
	CategoryNonOverlap       csp.Category = "student-non-overlap"
	CategoryInvigilatorRange csp.Category = "invigilator-range"
	CategoryInvigilatorUniq  csp.Category = "invigilator-uniqueness"
)

// Instance is a parsed timetabling problem. It is mutable only by the
// repair loop, and only between solving attempts; every attempt
// encodes a fresh Model from the current state.
type Instance struct {
	Students     int
	Exams        int
	Slots        int
	Rooms        int
	Invigilators int

	// RoomCapacities holds one capacity per room, indexed by room
	// number.
	RoomCapacities []int

	// ExamStudents is the exam-student incidence relation as
	// (exam, student) pairs.
	ExamStudents [][2]int
}

// Clone returns a deep copy. The repair loop mutates a clone so the
// caller's instance keeps the original parameters for delta
// reporting.
func (inst *Instance) Clone() *Instance {
	dup := *inst
	dup.RoomCapacities = append([]int(nil), inst.RoomCapacities...)
	dup.ExamStudents = append([][2]int(nil), inst.ExamStudents...)
	return &dup
}

// EnrollmentCounts returns the number of enrolled students per exam,
// indexed by exam number.
func (inst *Instance) EnrollmentCounts() []int {
	counts := make([]int, inst.Exams)
	for _, pair := range inst.ExamStudents {
		counts[pair[0]]++
	}
	return counts
}

// StudentExams returns the exams of each student that sits more than
// one, keyed by student number. Students with a single exam cannot
// overlap and are omitted.
func (inst *Instance) StudentExams() map[int][]int {
	byStudent := make(map[int][]int)
	for _, pair := range inst.ExamStudents {
		byStudent[pair[1]] = append(byStudent[pair[1]], pair[0])
	}
	for student, exams := range byStudent {
		if len(exams) < 2 {
			delete(byStudent, student)
		}
	}
	return byStudent
}

// checkBounds rejects instances referencing exams or students outside
// the declared counts. Violations are a parse failure, never a solver
// concern.
func (inst *Instance) checkBounds() error {
	if len(inst.RoomCapacities) != inst.Rooms {
		return fmt.Errorf("expected %d room capacities, got %d", inst.Rooms, len(inst.RoomCapacities))
	}
	for r, capacity := range inst.RoomCapacities {
		if capacity < 0 {
			return fmt.Errorf("capacity %d of room %d must not be negative", capacity, r)
		}
	}
	for _, pair := range inst.ExamStudents {
		if pair[0] < 0 || pair[0] >= inst.Exams {
			return fmt.Errorf("exam %d out of range [0, %d)", pair[0], inst.Exams)
		}
		if pair[1] < 0 || pair[1] >= inst.Students {
			return fmt.Errorf("student %d out of range [0, %d)", pair[1], inst.Students)
		}
	}
	return nil
}
