package wsp

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/constraint"
)

// MatrixEncoder encodes an instance as one boolean per (step, user)
// pair with exactly one user true per step; every fact kind is
// restated as implications over these indicators.
type MatrixEncoder struct{}

func (MatrixEncoder) Encode(inst *Instance) *csp.Model {
	m := &csp.Model{}

	for s := 1; s <= inst.Steps; s++ {
		for u := 1; u <= inst.Users; u++ {
			m.Variables = append(m.Variables, csp.BoolVar(matrixVarID(s, u)))
		}
	}

	row := func(s int) []csp.Identifier {
		ids := make([]csp.Identifier, inst.Users)
		for u := 1; u <= inst.Users; u++ {
			ids[u-1] = matrixVarID(s, u)
		}
		return ids
	}
	column := func(u int, steps []int) []csp.Identifier {
		ids := make([]csp.Identifier, len(steps))
		for i, s := range steps {
			ids[i] = matrixVarID(s, u)
		}
		return ids
	}

	for s := 1; s <= inst.Steps; s++ {
		m.Constraints = append(m.Constraints, constraint.ExactlyOne(
			csp.NewLabel(CategoryAssignment, s),
			fmt.Sprintf("step s%d is assigned exactly one user", s),
			row(s)...,
		))
	}

	for _, a := range inst.Authorisations {
		for s := 1; s <= inst.Steps; s++ {
			if lo.Contains(a.Steps, s) {
				continue
			}
			m.Constraints = append(m.Constraints, constraint.Forbid(
				csp.NewLabel(CategoryAuthorisation, a.User, s),
				fmt.Sprintf("user u%d is not authorised for step s%d", a.User, s),
				matrixVarID(s, a.User),
			))
		}
	}

	for _, d := range inst.Separations {
		m.Constraints = append(m.Constraints, constraint.Disjoint(
			csp.NewLabel(CategorySeparation, d.S1, d.S2),
			fmt.Sprintf("separation-of-duty between steps s%d and s%d", d.S1, d.S2),
			row(d.S1), row(d.S2),
		))
	}

	for _, d := range inst.Bindings {
		m.Constraints = append(m.Constraints, constraint.Aligned(
			csp.NewLabel(CategoryBinding, d.S1, d.S2),
			fmt.Sprintf("binding-of-duty between steps s%d and s%d", d.S1, d.S2),
			row(d.S1), row(d.S2),
		))
	}

	for i, a := range inst.AtMostKs {
		groups := make([][]csp.Identifier, inst.Users)
		for u := 1; u <= inst.Users; u++ {
			groups[u-1] = column(u, a.Steps)
		}
		m.Constraints = append(m.Constraints, constraint.AtMostGroups(
			csp.NewLabel(CategoryAtMostK, i),
			fmt.Sprintf("at most %d distinct users across steps %v", a.K, a.Steps),
			a.K, groups,
		))
	}

	selectorVars, selectorConstraints := teamSelectors(inst)
	m.Variables = append(m.Variables, selectorVars...)
	m.Constraints = append(m.Constraints, selectorConstraints...)
	for i, fact := range inst.OneTeams {
		for t, team := range fact.Teams {
			var offSelected, offDeselected []csp.Identifier
			for _, s := range fact.Steps {
				for u := 1; u <= inst.Users; u++ {
					if lo.Contains(team, u) {
						offDeselected = append(offDeselected, matrixVarID(s, u))
					} else {
						offSelected = append(offSelected, matrixVarID(s, u))
					}
				}
			}
			m.Constraints = append(m.Constraints, constraint.TeamSelection(
				csp.NewLabel(CategoryOneTeam, i, t),
				fmt.Sprintf("steps %v take users from team %d of group %d when it is selected", fact.Steps, t, i),
				selectorID(i, t), offSelected, offDeselected,
			))
		}
	}

	allSteps := lo.RangeFrom(1, inst.Steps)
	for u := 1; u <= inst.Users; u++ {
		m.Constraints = append(m.Constraints, constraint.AtMost(
			csp.NewLabel(CategoryCapacity, u),
			fmt.Sprintf("user u%d takes at most %d steps", u, inst.CapacityOf(u)),
			inst.CapacityOf(u), column(u, allSteps)...,
		))
	}

	return m
}

func (MatrixEncoder) Decode(asg csp.Assignment) Solution {
	sol := Solution{}
	for id, value := range asg {
		if value == 0 {
			continue
		}
		var s, u int
		if _, err := fmt.Sscanf(string(id), "s%d_u%d", &s, &u); err == nil {
			sol[s] = u
		}
	}
	return sol
}
