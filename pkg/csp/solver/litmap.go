package solver

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/assignsat/assignsat/pkg/csp"
)

type DuplicateIdentifier csp.Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", csp.Identifier(e))
}

type inconsistentLitMapping []error

func (inconsistentLitMapping) Error() string {
	return "internal solver failure"
}

// litMapping performs translation between the input and output types
// of Check/Enumerate (Variables, Constraints, Assignments) and the
// literals that appear in the SAT formula. Boolean variables map to
// one literal each; bounded-int variables map to one indicator
// literal per domain value with a forced exactly-one-true structure.
type litMapping struct {
	c           *logic.C
	vars        []csp.Variable
	meta        map[csp.Identifier]csp.Variable
	bools       map[csp.Identifier]z.Lit
	domains     map[csp.Identifier][]z.Lit
	structure   []z.Lit
	inorder     []z.Lit
	constraints map[z.Lit]csp.Constraint
	errs        inconsistentLitMapping
}

// newLitMapping initializes the translation tables for one Model:
// variable literals first, then one formula literal per constraint.
func newLitMapping(m *csp.Model) (*litMapping, error) {
	d := &litMapping{
		c:           logic.NewC(),
		vars:        m.Variables,
		meta:        make(map[csp.Identifier]csp.Variable, len(m.Variables)),
		bools:       make(map[csp.Identifier]z.Lit),
		domains:     make(map[csp.Identifier][]z.Lit),
		constraints: make(map[z.Lit]csp.Constraint, len(m.Constraints)),
	}

	for _, v := range m.Variables {
		if _, ok := d.meta[v.ID]; ok {
			return nil, DuplicateIdentifier(v.ID)
		}
		d.meta[v.ID] = v
		switch v.Kind {
		case csp.KindBool:
			d.bools[v.ID] = d.c.Lit()
		case csp.KindInt:
			if v.Hi < v.Lo {
				continue
			}
			inds := make([]z.Lit, v.Hi-v.Lo+1)
			for i := range inds {
				inds[i] = d.c.Lit()
			}
			d.domains[v.ID] = inds
			eo := d.c.Ors(inds...)
			if len(inds) > 1 {
				eo = d.c.And(eo, d.c.CardSort(inds).Leq(1))
			}
			d.structure = append(d.structure, eo)
		}
	}

	for _, constr := range m.Constraints {
		lit := constr.Apply(d)
		if lit == z.LitNull || lit == d.c.T {
			// Trivially true constraints can never appear in
			// an unsat core.
			continue
		}
		if _, ok := d.constraints[lit]; ok {
			// The circuit hash-conses gates, so a repeated
			// formula is already assumed; keep the first
			// attribution.
			continue
		}
		d.constraints[lit] = constr
		d.inorder = append(d.inorder, lit)
	}

	return d, nil
}

// LitOf returns the positive literal of the boolean variable with the
// given Identifier.
func (d *litMapping) LitOf(id csp.Identifier) z.Lit {
	if m, ok := d.bools[id]; ok {
		return m
	}
	d.errs = append(d.errs, fmt.Errorf("no boolean variable corresponding to %s", id))
	return d.c.F
}

// DomainLit returns the indicator literal asserting that the int
// variable id takes the given value.
func (d *litMapping) DomainLit(id csp.Identifier, value int) z.Lit {
	v, ok := d.meta[id]
	if !ok || v.Kind != csp.KindInt || value < v.Lo || value > v.Hi {
		d.errs = append(d.errs, fmt.Errorf("no domain indicator for %s = %d", id, value))
		return d.c.F
	}
	return d.domains[id][value-v.Lo]
}

func (d *litMapping) Circuit() *logic.C {
	return d.c
}

// Error returns an aggregation of all errors encountered during a
// litMapping's lifetime, or nil if there have been none. A non-nil
// value indicates a bug in an encoder or constraint implementation.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// AddStructure teaches the gate definitions to the solver and forces
// the structural exactly-one clauses of every int variable. These are
// hard clauses: they define the encoding, not a declared constraint,
// so they never show up in cores.
func (d *litMapping) AddStructure(g inter.Adder) {
	d.c.ToCnf(g)
	for _, m := range d.structure {
		g.Add(m)
		g.Add(z.LitNull)
	}
}

// AssumeConstraints assumes the formula literal of every labeled
// constraint. Assumptions are cleared by each Solve call, so this is
// invoked before every attempt.
func (d *litMapping) AssumeConstraints(g inter.S) {
	for _, m := range d.inorder {
		g.Assume(m)
	}
}

// Conflicts maps the failed assumptions of an UNSAT answer back to
// the constraints they belong to.
func (d *litMapping) Conflicts(g inter.Assumable) []csp.Constraint {
	whys := g.Why(nil)
	cs := make([]csp.Constraint, 0, len(whys))
	for _, why := range whys {
		if c, ok := d.constraints[why]; ok {
			cs = append(cs, c)
		}
	}
	return cs
}

// Assignment reads the model of a SAT answer back into variable
// values. Auxiliary variables are omitted: they carry no solution
// identity.
func (d *litMapping) Assignment(g inter.S) csp.Assignment {
	asg := make(csp.Assignment)
	for _, v := range d.vars {
		if v.Aux {
			continue
		}
		switch v.Kind {
		case csp.KindBool:
			if g.Value(d.bools[v.ID]) {
				asg[v.ID] = 1
			} else {
				asg[v.ID] = 0
			}
		case csp.KindInt:
			found := false
			for i, m := range d.domains[v.ID] {
				if g.Value(m) {
					asg[v.ID] = v.Lo + i
					found = true
					break
				}
			}
			if !found {
				d.errs = append(d.errs, fmt.Errorf("no value selected for %s", v.ID))
			}
		}
	}
	return asg
}

// BlockAssignment adds a clause requiring at least one non-auxiliary
// variable to differ from the given assignment, so the next attempt
// cannot reproduce it.
func (d *litMapping) BlockAssignment(g inter.Adder, asg csp.Assignment) {
	for _, v := range d.vars {
		if v.Aux {
			continue
		}
		value, ok := asg[v.ID]
		if !ok {
			continue
		}
		switch v.Kind {
		case csp.KindBool:
			if value != 0 {
				g.Add(d.bools[v.ID].Not())
			} else {
				g.Add(d.bools[v.ID])
			}
		case csp.KindInt:
			if value >= v.Lo && value <= v.Hi {
				g.Add(d.domains[v.ID][value-v.Lo].Not())
			}
		}
	}
	g.Add(z.LitNull)
}
