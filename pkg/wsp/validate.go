package wsp

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/assignsat/assignsat/pkg/csp"
)

// Violation describes one constraint a candidate solution breaks,
// with enough operand detail to reproduce it in a test.
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

// Validate re-checks a candidate solution against the raw instance
// facts, independently of any encoding or solver answer. It is the
// trust boundary of the pipeline and doubles as a standalone auditing
// tool over solution files.
func Validate(inst *Instance, sol Solution) (bool, Violations) {
	var violations Violations
	report := func(category csp.Category, format string, args ...interface{}) {
		violations = append(violations, Violation{Category: category, Message: fmt.Sprintf(format, args...)})
	}

	for s := 1; s <= inst.Steps; s++ {
		u, ok := sol[s]
		if !ok {
			report(CategoryAssignment, "assignment violation: step s%d has no assigned user", s)
			continue
		}
		if u < 1 || u > inst.Users {
			report(CategoryAssignment, "assignment violation: step s%d assigned unknown user u%d", s, u)
		}
	}

	for _, a := range inst.Authorisations {
		for s, u := range sol {
			if u == a.User && !lo.Contains(a.Steps, s) {
				report(CategoryAuthorisation, "authorisation violation: user u%d is not authorised for step s%d", u, s)
			}
		}
	}

	for _, d := range inst.Separations {
		if u1, ok := sol[d.S1]; ok {
			if u2, ok := sol[d.S2]; ok && u1 == u2 {
				report(CategorySeparation, "separation-of-duty violation: steps s%d and s%d assigned to the same user u%d", d.S1, d.S2, u1)
			}
		}
	}

	for _, d := range inst.Bindings {
		if sol[d.S1] != sol[d.S2] {
			report(CategoryBinding, "binding-of-duty violation: steps s%d and s%d assigned to different users", d.S1, d.S2)
		}
	}

	for i, a := range inst.AtMostKs {
		users := lo.Uniq(lo.FilterMap(a.Steps, func(s int, _ int) (int, bool) {
			u, ok := sol[s]
			return u, ok
		}))
		if len(users) > a.K {
			report(CategoryAtMostK, "at-most-%d violation: %d distinct users assigned across steps %v of group %d", a.K, len(users), a.Steps, i)
		}
	}

	for i, fact := range inst.OneTeams {
		assigned := lo.FilterMap(fact.Steps, func(s int, _ int) (int, bool) {
			u, ok := sol[s]
			return u, ok
		})
		ok := lo.SomeBy(fact.Teams, func(team []int) bool {
			return lo.EveryBy(assigned, func(u int) bool {
				return lo.Contains(team, u)
			})
		})
		if !ok {
			report(CategoryOneTeam, "one-team violation: users %v assigned to steps %v of group %d do not match any declared team", assigned, fact.Steps, i)
		}
	}

	for u := 1; u <= inst.Users; u++ {
		taken := lo.CountValues(lo.Values(sol))[u]
		if capacity := inst.CapacityOf(u); taken > capacity {
			report(CategoryCapacity, "user-capacity violation: user u%d assigned to %d steps, exceeding capacity %d", u, taken, capacity)
		}
	}

	return len(violations) == 0, violations
}
