package csp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Identifier values uniquely identify particular Variables within
// the input to a single solving attempt.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Identifierf returns an Identifier built from a format string.
func Identifierf(format string, args ...interface{}) Identifier {
	return Identifier(fmt.Sprintf(format, args...))
}

// Kind discriminates between the two variable shapes understood by
// the solver adapter.
type Kind int

const (
	// KindBool variables take the values 0 and 1.
	KindBool Kind = iota
	// KindInt variables take a single value from a bounded,
	// inclusive integer domain.
	KindInt
)

// Variable is a decision or auxiliary variable of a Model. Int
// variables carry their inclusive domain bounds; the adapter derives
// everything else from them.
type Variable struct {
	ID   Identifier
	Kind Kind
	Lo   int
	Hi   int

	// Aux marks helper variables (team selectors, cardinality
	// representatives) that do not participate in solution
	// identity: two assignments differing only in auxiliary
	// variables denote the same solution.
	Aux bool
}

// BoolVar returns a boolean decision variable.
func BoolVar(id Identifier) Variable {
	return Variable{ID: id, Kind: KindBool}
}

// IntVar returns a bounded-integer decision variable with the
// inclusive domain [lo, hi].
func IntVar(id Identifier, lo, hi int) Variable {
	return Variable{ID: id, Kind: KindInt, Lo: lo, Hi: hi}
}

// AuxBoolVar returns an auxiliary boolean variable.
func AuxBoolVar(id Identifier) Variable {
	v := BoolVar(id)
	v.Aux = true
	return v
}

// AuxIntVar returns an auxiliary bounded-integer variable.
func AuxIntVar(id Identifier, lo, hi int) Variable {
	v := IntVar(id, lo, hi)
	v.Aux = true
	return v
}

// Category names the semantic family a constraint belongs to. The
// conflict diagnoser dispatches on Category values, never on label
// text.
type Category string

// Label identifies a single constraint of a Model. It is a
// structured value: the category plus the operand indices (exam,
// step, user, room numbers) the constraint ranges over, so that an
// unsat core can be mapped back to instance facts without parsing
// any strings.
type Label struct {
	Category Category
	Operands []int
}

// NewLabel returns a Label for the given category and operands.
func NewLabel(category Category, operands ...int) Label {
	return Label{Category: category, Operands: operands}
}

func (l Label) String() string {
	if len(l.Operands) == 0 {
		return string(l.Category)
	}
	parts := make([]string, len(l.Operands))
	for i, op := range l.Operands {
		parts[i] = fmt.Sprint(op)
	}
	return fmt.Sprintf("%s(%s)", l.Category, strings.Join(parts, ","))
}

// Equal reports whether two labels denote the same constraint.
func (l Label) Equal(other Label) bool {
	if l.Category != other.Category || len(l.Operands) != len(other.Operands) {
		return false
	}
	for i := range l.Operands {
		if l.Operands[i] != other.Operands[i] {
			return false
		}
	}
	return true
}

// LitMapping performs translation between Model-level variables and
// the literals that appear in the underlying SAT formula.
type LitMapping interface {
	// LitOf returns the positive literal of a boolean variable.
	LitOf(id Identifier) z.Lit
	// DomainLit returns the indicator literal asserting that the
	// integer variable id takes the given domain value.
	DomainLit(id Identifier, value int) z.Lit
	// Circuit exposes the logic circuit constraints lower
	// themselves into.
	Circuit() *logic.C
}

// Constraint implementations restrict the assignments a Model
// admits. Each constraint lowers itself to a single formula literal;
// the adapter assumes all such literals, so a failed assumption maps
// back to exactly one labeled constraint.
type Constraint interface {
	Label() Label
	String() string
	Apply(lm LitMapping) z.Lit
}

// Model is the unit of work handed to the solver adapter: the
// decision and auxiliary variables plus the labeled constraints over
// them. A Model is built fresh for every solving attempt and never
// mutated after handoff.
type Model struct {
	Variables   []Variable
	Constraints []Constraint
}

// LabelSet returns the sorted labels of all constraints; useful for
// equivalence checks between encodings of the same instance.
func (m *Model) LabelSet() []string {
	labels := make([]string, len(m.Constraints))
	for i, c := range m.Constraints {
		labels[i] = c.Label().String()
	}
	sort.Strings(labels)
	return labels
}

// Assignment maps every non-auxiliary variable of a Model to its
// value: domain values for int variables, 0 or 1 for booleans.
type Assignment map[Identifier]int

// Equal reports value equality over the full assignment. Solutions
// are deduplicated with this, never by pointer identity.
func (a Assignment) Equal(other Assignment) bool {
	if len(a) != len(other) {
		return false
	}
	for id, v := range a {
		if w, ok := other[id]; !ok || v != w {
			return false
		}
	}
	return true
}

// Status is the verdict of a single solving attempt.
type Status int

const (
	// StatusUnknown means the engine gave up before reaching a
	// verdict, typically on timeout.
	StatusUnknown Status = iota
	StatusSat
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Outcome is the result of a core-producing satisfiability check.
// Assignment is populated on StatusSat, Core on StatusUnsat.
type Outcome struct {
	Status     Status
	Assignment Assignment
	Core       []Constraint
}

// NotSatisfiable is an error composed of a set of constraints that
// together make a solution impossible.
type NotSatisfiable []Constraint

func (e NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, c := range e {
		s[i] = c.String()
	}
	return fmt.Sprintf("%s:\n%s", msg, strings.Join(s, "\n"))
}
