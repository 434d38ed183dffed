package wsp

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/constraint"
)

// IntDomainEncoder encodes an instance as one bounded integer per
// step valued in [1, users]; every fact kind is restated as
// (in)equalities and disjunctions over these integers. At-most-k uses
// k auxiliary representative variables under a non-decreasing
// symmetry-breaking order rather than enumerating users.
type IntDomainEncoder struct{}

func (IntDomainEncoder) Encode(inst *Instance) *csp.Model {
	m := &csp.Model{}

	steps := make([]csp.Variable, inst.Steps+1)
	for s := 1; s <= inst.Steps; s++ {
		steps[s] = csp.IntVar(stepVarID(s), 1, inst.Users)
		m.Variables = append(m.Variables, steps[s])
	}

	for s := 1; s <= inst.Steps; s++ {
		m.Constraints = append(m.Constraints, constraint.InBounds(
			csp.NewLabel(CategoryAssignment, s),
			fmt.Sprintf("step s%d is assigned exactly one user", s),
			steps[s],
		))
	}

	for _, a := range inst.Authorisations {
		for s := 1; s <= inst.Steps; s++ {
			if lo.Contains(a.Steps, s) {
				continue
			}
			m.Constraints = append(m.Constraints, constraint.NeValue(
				csp.NewLabel(CategoryAuthorisation, a.User, s),
				fmt.Sprintf("user u%d is not authorised for step s%d", a.User, s),
				steps[s], a.User,
			))
		}
	}

	for _, d := range inst.Separations {
		m.Constraints = append(m.Constraints, constraint.IntNe(
			csp.NewLabel(CategorySeparation, d.S1, d.S2),
			fmt.Sprintf("separation-of-duty between steps s%d and s%d", d.S1, d.S2),
			steps[d.S1], steps[d.S2],
		))
	}

	for _, d := range inst.Bindings {
		m.Constraints = append(m.Constraints, constraint.IntEq(
			csp.NewLabel(CategoryBinding, d.S1, d.S2),
			fmt.Sprintf("binding-of-duty between steps s%d and s%d", d.S1, d.S2),
			steps[d.S1], steps[d.S2],
		))
	}

	for i, a := range inst.AtMostKs {
		reps := make([]csp.Variable, a.K)
		for j := range reps {
			reps[j] = csp.AuxIntVar(repID(i, j), 1, inst.Users)
			m.Variables = append(m.Variables, reps[j])
		}
		m.Constraints = append(m.Constraints, constraint.NonDecreasing(
			csp.NewLabel(CategoryAtMostK, i),
			fmt.Sprintf("representative users of at-most-%d group %d are ordered", a.K, i),
			reps,
		))
		for _, s := range a.Steps {
			m.Constraints = append(m.Constraints, constraint.EqualsOneOf(
				csp.NewLabel(CategoryAtMostK, i, s),
				fmt.Sprintf("step s%d takes one of the %d representative users of group %d", s, a.K, i),
				steps[s], reps,
			))
		}
	}

	selectorVars, selectorConstraints := teamSelectors(inst)
	m.Variables = append(m.Variables, selectorVars...)
	m.Constraints = append(m.Constraints, selectorConstraints...)
	for i, fact := range inst.OneTeams {
		for t, team := range fact.Teams {
			for _, s := range fact.Steps {
				m.Constraints = append(m.Constraints, constraint.MemberWhenSelected(
					csp.NewLabel(CategoryOneTeam, i, t, s),
					fmt.Sprintf("step s%d takes a user from team %d of group %d when it is selected", s, t, i),
					selectorID(i, t), steps[s], team,
				))
			}
		}
	}

	for u := 1; u <= inst.Users; u++ {
		m.Constraints = append(m.Constraints, constraint.CountAtMost(
			csp.NewLabel(CategoryCapacity, u),
			fmt.Sprintf("user u%d takes at most %d steps", u, inst.CapacityOf(u)),
			u, steps[1:], inst.CapacityOf(u),
		))
	}

	return m
}

func (IntDomainEncoder) Decode(asg csp.Assignment) Solution {
	sol := Solution{}
	for id, value := range asg {
		var s int
		if _, err := fmt.Sscanf(string(id), "s%d", &s); err == nil {
			sol[s] = value
		}
	}
	return sol
}
