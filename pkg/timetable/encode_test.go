package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assignsat/assignsat/pkg/csp"
)

func TestEncodeIsDeterministic(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(sampleInstance))
	require.NoError(t, err)

	first := Encode(inst)
	second := Encode(inst)
	assert.Equal(t, first.LabelSet(), second.LabelSet())
	assert.Equal(t, len(first.Variables), len(second.Variables))
}

func TestEncodeShape(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(sampleInstance))
	require.NoError(t, err)

	m := Encode(inst)
	require.Len(t, m.Variables, 3*inst.Exams)
	for _, v := range m.Variables {
		assert.Equal(t, csp.KindInt, v.Kind)
		assert.False(t, v.Aux)
	}

	counts := map[csp.Category]int{}
	for _, c := range m.Constraints {
		counts[c.Label().Category]++
	}
	assert.Equal(t, inst.Exams, counts[CategoryRoomTimeRange])
	assert.Equal(t, 1, counts[CategoryUniqueRoomTime])
	assert.Equal(t, inst.Exams*inst.Rooms, counts[CategoryRoomCapacity])
	// student 0 sits both exams
	assert.Equal(t, 1, counts[CategoryNonOverlap])
	assert.Equal(t, inst.Exams, counts[CategoryInvigilatorRange])
	assert.Equal(t, 1, counts[CategoryInvigilatorUniq])
}

func TestEncodeEmptyInstance(t *testing.T) {
	m := Encode(&Instance{Invigilators: DefaultInvigilators})
	assert.Empty(t, m.Variables)
	assert.Empty(t, m.Constraints)
}

func TestDecodeSolution(t *testing.T) {
	inst := &Instance{Exams: 2, Slots: 2, Rooms: 1, Invigilators: 2}
	sol := DecodeSolution(inst, csp.Assignment{
		"slot0": 0, "room0": 0, "inv0": 0,
		"slot1": 1, "room1": 0, "inv1": 1,
	})
	assert.Equal(t, Solution{
		{Exam: 0, Slot: 0, Room: 0, Invigilator: 0},
		{Exam: 1, Slot: 1, Room: 0, Invigilator: 1},
	}, sol)
}
