package wsp

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/constraint"
)

// Encoder turns an Instance into a Model. Two interchangeable
// strategies exist for identical semantics: a boolean indicator
// matrix and a bounded-integer domain per step. Both are
// deterministic and total over well-formed instances, and both must
// behave identically under the solver adapter.
type Encoder interface {
	Encode(inst *Instance) *csp.Model
	// Decode maps an adapter assignment of an encoded Model back
	// to a step-to-user Solution.
	Decode(asg csp.Assignment) Solution
}

// NewEncoder returns the encoder registered under the given name:
// "matrix" or "int".
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case "matrix":
		return MatrixEncoder{}, nil
	case "int", "intdomain":
		return IntDomainEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q: expected matrix or int", name)
	}
}

func stepVarID(s int) csp.Identifier {
	return csp.Identifierf("s%d", s)
}

func matrixVarID(s, u int) csp.Identifier {
	return csp.Identifierf("s%d_u%d", s, u)
}

func selectorID(fact, team int) csp.Identifier {
	return csp.Identifierf("team%d_t%d", fact, team)
}

func repID(fact, rep int) csp.Identifier {
	return csp.Identifierf("amk%d_r%d", fact, rep)
}

// teamSelectors returns the auxiliary selector variables of all
// one-team facts along with the encoding-independent constraints
// over them: exactly one team selected per fact, and selectors of
// intersection-free teams from facts sharing a step never selected
// together.
func teamSelectors(inst *Instance) ([]csp.Variable, []csp.Constraint) {
	var vars []csp.Variable
	var constraints []csp.Constraint

	byStep := map[int][]int{}
	for i, fact := range inst.OneTeams {
		ids := make([]csp.Identifier, len(fact.Teams))
		for t := range fact.Teams {
			ids[t] = selectorID(i, t)
			vars = append(vars, csp.AuxBoolVar(ids[t]))
		}
		constraints = append(constraints, constraint.ExactlyOne(
			csp.NewLabel(CategoryOneTeam, i),
			fmt.Sprintf("one-team group %d selects exactly one team", i),
			ids...,
		))
		for _, s := range fact.Steps {
			byStep[s] = append(byStep[s], i)
		}
	}

	// Facts sharing a step must agree on a user for it, so two
	// teams without a common member cannot both be selected.
	seen := map[[2]int]bool{}
	for s := 1; s <= inst.Steps; s++ {
		facts := lo.Uniq(byStep[s])
		for i := 0; i < len(facts); i++ {
			for j := i + 1; j < len(facts); j++ {
				f1, f2 := facts[i], facts[j]
				if seen[[2]int{f1, f2}] {
					continue
				}
				seen[[2]int{f1, f2}] = true
				for t1, team1 := range inst.OneTeams[f1].Teams {
					for t2, team2 := range inst.OneTeams[f2].Teams {
						if len(lo.Intersect(team1, team2)) > 0 {
							continue
						}
						constraints = append(constraints, constraint.NeverBoth(
							csp.NewLabel(CategoryOneTeam, f1, t1, f2, t2),
							fmt.Sprintf("teams %d of group %d and %d of group %d share a step but no user", t1, f1, t2, f2),
							selectorID(f1, t1), selectorID(f2, t2),
						))
					}
				}
			}
		}
	}
	return vars, constraints
}
