package wsp

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
		Steps:          3,
		Users:          3,
		Authorisations: []Authorisation{{User: 1, Steps: []int{1}}},
		Separations:    []SeparationOfDuty{{S1: 1, S2: 2}},
		Bindings:       []BindingOfDuty{{S1: 2, S2: 3}},
	}

	t.Run("valid solution", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 2, 3: 2})
		assert.True(t, ok)
		assert.Empty(t, violations)
	})

	t.Run("missing step", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 2})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryAssignment)
	})

	t.Run("unknown user", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 2, 3: 9})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryAssignment)
	})

	t.Run("unauthorised user", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 2, 2: 1, 3: 1})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryAuthorisation)
	})

	t.Run("separation of duty", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 2, 2: 2, 3: 2})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategorySeparation)
	})

	t.Run("binding of duty", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 2, 3: 3})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryBinding)
	})
}

func TestValidateCardinality(t *testing.T) {
	inst := &Instance{
		Steps:      3,
		Users:      3,
		AtMostKs:   []AtMostK{{K: 1, Steps: []int{1, 2, 3}}},
		OneTeams:   []OneTeam{{Steps: []int{1, 2}, Teams: [][]int{{1, 2}, {3}}}},
		Capacities: []UserCapacity{{User: 1, Capacity: 2}},
	}

	t.Run("too many distinct users", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 1, 3: 2})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryAtMostK)
	})

	t.Run("users straddle teams", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 3, 3: 1})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryOneTeam)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 1, 3: 1})
		assert.False(t, ok)
		assert.Contains(t, categoriesOf(violations), CategoryCapacity)
	})

	t.Run("single team within capacity", func(t *testing.T) {
		ok, violations := Validate(inst, Solution{1: 1, 2: 1, 3: 2})
		// at-most-1 still allows one user across all three steps only
		assert.False(t, ok)
		require.NotEmpty(t, violations)
	})
}

func TestViolationsErr(t *testing.T) {
	assert.NoError(t, Violations(nil).Err())

	err := Violations{
		{Category: CategorySeparation, Message: "separation-of-duty violation"},
		{Category: CategoryCapacity, Message: "user-capacity violation"},
	}.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "separation-of-duty violation")
	assert.Contains(t, err.Error(), "user-capacity violation")
}
