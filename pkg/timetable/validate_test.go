package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assignsat/assignsat/pkg/csp"
)

func categoriesOf(vs Violations) []csp.Category {
	categories := make([]csp.Category, len(vs))
	for i, v := range vs {
		categories[i] = v.Category
	}
	return categories
}

func TestValidate(t *testing.T) {
	inst := &Instance{
		Students:       1,
		Exams:          2,
		Slots:          4,
		Rooms:          2,
		Invigilators:   2,
		RoomCapacities: []int{1, 0},
		ExamStudents:   [][2]int{{0, 0}, {1, 0}},
	}

	t.Run("valid timetable", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
			{Exam: 1, Slot: 3, Room: 0, Invigilator: 1},
		})
		assert.True(t, ok)
		assert.Empty(t, violations)
	})

	t.Run("missing placement", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryRoomTimeRange)
	})

	t.Run("slot out of range", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 9, Room: 0, Invigilator: 0},
			{Exam: 1, Slot: 3, Room: 0, Invigilator: 1},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryRoomTimeRange)
	})

	t.Run("shared room and slot", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
			{Exam: 1, Slot: 0, Room: 0, Invigilator: 1},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryUniqueRoomTime)
	})

	t.Run("room over capacity", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 1, Invigilator: 0},
			{Exam: 1, Slot: 3, Room: 0, Invigilator: 1},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryRoomCapacity)
	})

	t.Run("adjacent slots for one student", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
			{Exam: 1, Slot: 1, Room: 0, Invigilator: 1},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryNonOverlap)
	})

	t.Run("invigilator out of range", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 7},
			{Exam: 1, Slot: 3, Room: 0, Invigilator: 1},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryInvigilatorRange)
	})

	t.Run("shared invigilator", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{
			{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
			{Exam: 1, Slot: 3, Room: 0, Invigilator: 0},
		})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryInvigilatorUniq)
	})
}

func TestViolationsErr(t *testing.T) {
	assert.NoError(t, Violations(nil).Err())

	err := Violations{
		{Category: CategoryRoomCapacity, Message: "capacity violation"},
		{Category: CategoryNonOverlap, Message: "overlap violation"},
	}.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity violation")
	assert.Contains(t, err.Error(), "overlap violation")
}
