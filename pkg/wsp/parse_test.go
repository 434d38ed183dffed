package wsp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInstance = `#Steps: 4
#Users: 3
#Constraints: 6
Authorisations u1 s1 s2
Separation-of-duty s1 s2
Binding-of-duty s3 s4
At-most-k 2 s1 s2 s3
One-team s1 s2 (u1 u2) (u3)
User-Capacity u2 2
`

func TestParseInstance(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(sampleInstance))
	require.NoError(t, err)

	want := &Instance{
		Steps:          4,
		Users:          3,
		Authorisations: []Authorisation{{User: 1, Steps: []int{1, 2}}},
		Separations:    []SeparationOfDuty{{S1: 1, S2: 2}},
		Bindings:       []BindingOfDuty{{S1: 3, S2: 4}},
		AtMostKs:       []AtMostK{{K: 2, Steps: []int{1, 2, 3}}},
		OneTeams:       []OneTeam{{Steps: []int{1, 2}, Teams: [][]int{{1, 2}, {3}}}},
		Capacities:     []UserCapacity{{User: 2, Capacity: 2}},
	}
	if diff := cmp.Diff(want, inst); diff != "" {
		t.Errorf("parsed instance mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstanceKeepsFirstAuthorisation(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(`Steps: 2
Users: 2
Constraints: 2
Authorisations u1 s1
Authorisations u1 s1 s2
`))
	require.NoError(t, err)
	require.Len(t, inst.Authorisations, 1)
	assert.Equal(t, []int{1}, inst.Authorisations[0].Steps)
}

func TestParseInstanceErrors(t *testing.T) {
	for _, tt := range []struct {
		Name  string
		Input string
	}{
		{
			Name:  "missing header",
			Input: "Steps: 2\nUsers: 2\n",
		},
		{
			Name:  "malformed header",
			Input: "Steps: two\nUsers: 2\nConstraints: 0\n",
		},
		{
			Name:  "unknown keyword",
			Input: "Steps: 2\nUsers: 2\nConstraints: 1\nMust-not-share s1 s2\n",
		},
		{
			Name:  "step out of range",
			Input: "Steps: 2\nUsers: 2\nConstraints: 1\nSeparation-of-duty s1 s3\n",
		},
		{
			Name:  "user out of range",
			Input: "Steps: 2\nUsers: 2\nConstraints: 1\nAuthorisations u5 s1\n",
		},
		{
			Name:  "bad step token",
			Input: "Steps: 2\nUsers: 2\nConstraints: 1\nBinding-of-duty s1 x2\n",
		},
		{
			Name:  "one-team without teams",
			Input: "Steps: 2\nUsers: 2\nConstraints: 1\nOne-team s1 s2\n",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			_, err := ParseInstance(strings.NewReader(tt.Input))
			assert.Error(t, err)
		})
	}
}

func TestCapacityOf(t *testing.T) {
	inst := &Instance{
		Steps: 2,
		Users: 2,
		Capacities: []UserCapacity{
			{User: 1, Capacity: 1},
		},
	}
	assert.Equal(t, 1, inst.CapacityOf(1))
	assert.Equal(t, DefaultCapacity, inst.CapacityOf(2))
}
