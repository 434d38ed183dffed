// Package wsp models the workflow satisfiability problem: assigning
// one user to every workflow step under authorisation, duty,
// cardinality, team and capacity constraints. Steps and users are
// numbered from 1, matching the s1/u1 tokens of the instance dialect.
package wsp

import (
	"fmt"

	"github.com/assignsat/assignsat/pkg/csp"
)

// DefaultCapacity is the number of steps a user with no explicit
// User-Capacity fact may take on.
const DefaultCapacity = 20

// Constraint categories of the WSP domain. The structured labels the
// encoders emit carry one of these.
const (
	CategoryAssignment    csp.Category = "step-assignment"
	CategoryAuthorisation csp.Category = "authorisation"
	CategorySeparation    csp.Category = "separation-of-duty"
	CategoryBinding       csp.Category = "binding-of-duty"
	CategoryAtMostK       csp.Category = "at-most-k"
	CategoryOneTeam       csp.Category = "one-team"
	CategoryCapacity      csp.Category = "user-capacity"
)

// Authorisation restricts a user to an explicit set of steps.
type Authorisation struct {
	User  int
	Steps []int
}

// SeparationOfDuty requires two steps to be taken by different users.
type SeparationOfDuty struct {
	S1, S2 int
}

// BindingOfDuty requires two steps to be taken by the same user.
type BindingOfDuty struct {
	S1, S2 int
}

// AtMostK bounds the number of distinct users across a group of steps.
type AtMostK struct {
	K     int
	Steps []int
}

// OneTeam requires a group of steps to be collectively assigned users
// drawn from a single one of the declared teams.
type OneTeam struct {
	Steps []int
	Teams [][]int
}

// UserCapacity overrides the default step capacity of one user.
type UserCapacity struct {
	User     int
	Capacity int
}

// Instance is a parsed WSP problem: the declared counts plus the raw
// constraint facts. It carries no solving behavior; the encoders and
// the validator both work from these facts.
type Instance struct {
	Steps int
	Users int

	// DefaultCapacity overrides the package default for users
	// without an explicit capacity fact; zero means DefaultCapacity.
	DefaultCapacity int

	Authorisations []Authorisation
	Separations    []SeparationOfDuty
	Bindings       []BindingOfDuty
	AtMostKs       []AtMostK
	OneTeams       []OneTeam
	Capacities     []UserCapacity
}

// CapacityOf returns the effective step capacity of a user.
func (inst *Instance) CapacityOf(user int) int {
	for _, c := range inst.Capacities {
		if c.User == user {
			return c.Capacity
		}
	}
	if inst.DefaultCapacity > 0 {
		return inst.DefaultCapacity
	}
	return DefaultCapacity
}

// AuthorisedSteps returns the steps a user may take, or nil when the
// user carries no authorisation fact and is allowed on any step.
func (inst *Instance) AuthorisedSteps(user int) []int {
	for _, a := range inst.Authorisations {
		if a.User == user {
			return a.Steps
		}
	}
	return nil
}

// checkBounds rejects facts referencing steps or users outside the
// declared counts. Violations are a parse failure, never a solver
// concern.
func (inst *Instance) checkBounds() error {
	step := func(s int) error {
		if s < 1 || s > inst.Steps {
			return fmt.Errorf("step s%d out of range [1, %d]", s, inst.Steps)
		}
		return nil
	}
	user := func(u int) error {
		if u < 1 || u > inst.Users {
			return fmt.Errorf("user u%d out of range [1, %d]", u, inst.Users)
		}
		return nil
	}

	for _, a := range inst.Authorisations {
		if err := user(a.User); err != nil {
			return err
		}
		for _, s := range a.Steps {
			if err := step(s); err != nil {
				return err
			}
		}
	}
	for _, d := range inst.Separations {
		if err := step(d.S1); err != nil {
			return err
		}
		if err := step(d.S2); err != nil {
			return err
		}
	}
	for _, d := range inst.Bindings {
		if err := step(d.S1); err != nil {
			return err
		}
		if err := step(d.S2); err != nil {
			return err
		}
	}
	for _, a := range inst.AtMostKs {
		if a.K < 1 {
			return fmt.Errorf("at-most-k bound %d must be positive", a.K)
		}
		for _, s := range a.Steps {
			if err := step(s); err != nil {
				return err
			}
		}
	}
	for _, t := range inst.OneTeams {
		for _, s := range t.Steps {
			if err := step(s); err != nil {
				return err
			}
		}
		for _, team := range t.Teams {
			for _, u := range team {
				if err := user(u); err != nil {
					return err
				}
			}
		}
	}
	for _, c := range inst.Capacities {
		if err := user(c.User); err != nil {
			return err
		}
		if c.Capacity < 0 {
			return fmt.Errorf("capacity %d of user u%d must not be negative", c.Capacity, c.User)
		}
	}
	return nil
}
