// Package constraint provides the labeled constraint constructors the
// domain encoders build their Models from. Every constructor returns a
// csp.Constraint that lowers itself into the adapter's logic circuit
// as a single formula literal.
package constraint

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/assignsat/assignsat/pkg/csp"
)

type labeled struct {
	label csp.Label
	msg   string
}

func (l labeled) Label() csp.Label {
	return l.label
}

func (l labeled) String() string {
	return l.msg
}

// ands folds a conjunction, treating the empty conjunction as true.
func ands(c *logic.C, ms []z.Lit) z.Lit {
	if len(ms) == 0 {
		return c.T
	}
	return c.Ands(ms...)
}

// ors folds a disjunction, treating the empty disjunction as false.
func ors(c *logic.C, ms []z.Lit) z.Lit {
	if len(ms) == 0 {
		return c.F
	}
	return c.Ors(ms...)
}

// eqLit is true iff the two one-hot encoded int variables take the
// same value. Values outside the domain overlap can never be equal.
func eqLit(lm csp.LitMapping, x, y csp.Variable) z.Lit {
	c := lm.Circuit()
	var both []z.Lit
	for v := max(x.Lo, y.Lo); v <= min(x.Hi, y.Hi); v++ {
		both = append(both, c.And(lm.DomainLit(x.ID, v), lm.DomainLit(y.ID, v)))
	}
	return ors(c, both)
}

// neLit is true iff the two int variables take different values.
func neLit(lm csp.LitMapping, x, y csp.Variable) z.Lit {
	c := lm.Circuit()
	var neither []z.Lit
	for v := max(x.Lo, y.Lo); v <= min(x.Hi, y.Hi); v++ {
		neither = append(neither, c.Or(lm.DomainLit(x.ID, v).Not(), lm.DomainLit(y.ID, v).Not()))
	}
	return ands(c, neither)
}

type exactlyOne struct {
	labeled
	ids []csp.Identifier
}

func (e *exactlyOne) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	ms := make([]z.Lit, len(e.ids))
	for i, id := range e.ids {
		ms[i] = lm.LitOf(id)
	}
	if len(ms) == 0 {
		return c.F
	}
	return c.And(ors(c, ms), c.CardSort(ms).Leq(1))
}

// ExactlyOne requires that exactly one of the given boolean variables
// is true.
func ExactlyOne(label csp.Label, msg string, ids ...csp.Identifier) csp.Constraint {
	return &exactlyOne{labeled{label, msg}, ids}
}

type forbid struct {
	labeled
	id csp.Identifier
}

func (f *forbid) Apply(lm csp.LitMapping) z.Lit {
	return lm.LitOf(f.id).Not()
}

// Forbid requires a boolean variable to be false.
func Forbid(label csp.Label, msg string, id csp.Identifier) csp.Constraint {
	return &forbid{labeled{label, msg}, id}
}

type neverBoth struct {
	labeled
	a, b csp.Identifier
}

func (n *neverBoth) Apply(lm csp.LitMapping) z.Lit {
	return lm.Circuit().Or(lm.LitOf(n.a).Not(), lm.LitOf(n.b).Not())
}

// NeverBoth forbids two boolean variables from being true together.
func NeverBoth(label csp.Label, msg string, a, b csp.Identifier) csp.Constraint {
	return &neverBoth{labeled{label, msg}, a, b}
}

type disjoint struct {
	labeled
	as, bs []csp.Identifier
}

func (d *disjoint) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	ms := make([]z.Lit, len(d.as))
	for i := range d.as {
		ms[i] = c.Or(lm.LitOf(d.as[i]).Not(), lm.LitOf(d.bs[i]).Not())
	}
	return ands(c, ms)
}

// Disjoint requires that no position holds true in both parallel
// boolean slices; with indicator rows for two steps this is
// separation of duty.
func Disjoint(label csp.Label, msg string, as, bs []csp.Identifier) csp.Constraint {
	return &disjoint{labeled{label, msg}, as, bs}
}

type aligned struct {
	labeled
	as, bs []csp.Identifier
}

func (a *aligned) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	ms := make([]z.Lit, 0, 2*len(a.as))
	for i := range a.as {
		x, y := lm.LitOf(a.as[i]), lm.LitOf(a.bs[i])
		ms = append(ms, c.Or(x.Not(), y), c.Or(x, y.Not()))
	}
	return ands(c, ms)
}

// Aligned requires two parallel boolean slices to agree position by
// position; with indicator rows for two steps this is binding of
// duty.
func Aligned(label csp.Label, msg string, as, bs []csp.Identifier) csp.Constraint {
	return &aligned{labeled{label, msg}, as, bs}
}

type atMost struct {
	labeled
	n   int
	ids []csp.Identifier
}

func (a *atMost) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	if len(a.ids) <= a.n {
		return c.T
	}
	ms := make([]z.Lit, len(a.ids))
	for i, id := range a.ids {
		ms[i] = lm.LitOf(id)
	}
	return c.CardSort(ms).Leq(a.n)
}

// AtMost bounds the number of true variables among the given booleans.
func AtMost(label csp.Label, msg string, n int, ids ...csp.Identifier) csp.Constraint {
	return &atMost{labeled{label, msg}, n, ids}
}

type atMostGroups struct {
	labeled
	k      int
	groups [][]csp.Identifier
}

func (a *atMostGroups) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	if len(a.groups) <= a.k {
		return c.T
	}
	flags := make([]z.Lit, len(a.groups))
	for i, group := range a.groups {
		ms := make([]z.Lit, len(group))
		for j, id := range group {
			ms[j] = lm.LitOf(id)
		}
		flags[i] = ors(c, ms)
	}
	return c.CardSort(flags).Leq(a.k)
}

// AtMostGroups bounds the number of groups with at least one true
// member. Grouping the indicator column of each user over a step set
// yields the at-most-k-users constraint of the matrix encoding.
func AtMostGroups(label csp.Label, msg string, k int, groups [][]csp.Identifier) csp.Constraint {
	return &atMostGroups{labeled{label, msg}, k, groups}
}

type teamSelection struct {
	labeled
	selector          csp.Identifier
	offWhenSelected   []csp.Identifier
	offWhenDeselected []csp.Identifier
}

func (t *teamSelection) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	sel := lm.LitOf(t.selector)
	ms := make([]z.Lit, 0, len(t.offWhenSelected)+len(t.offWhenDeselected))
	for _, id := range t.offWhenSelected {
		ms = append(ms, c.Or(sel.Not(), lm.LitOf(id).Not()))
	}
	for _, id := range t.offWhenDeselected {
		ms = append(ms, c.Or(sel, lm.LitOf(id).Not()))
	}
	return ands(c, ms)
}

// TeamSelection ties a team-selector boolean to the matrix indicators
// it governs: selecting the team switches off the listed outside
// indicators, deselecting it switches off the team's own indicators.
func TeamSelection(label csp.Label, msg string, selector csp.Identifier, offWhenSelected, offWhenDeselected []csp.Identifier) csp.Constraint {
	return &teamSelection{labeled{label, msg}, selector, offWhenSelected, offWhenDeselected}
}

type inBounds struct {
	labeled
	vars []csp.Variable
}

func (b *inBounds) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	ms := make([]z.Lit, 0, len(b.vars))
	for _, v := range b.vars {
		var within []z.Lit
		for val := v.Lo; val <= v.Hi; val++ {
			within = append(within, lm.DomainLit(v.ID, val))
		}
		ms = append(ms, ors(c, within))
	}
	return ands(c, ms)
}

// InBounds requires every given int variable to take a value inside
// its declared domain. An empty domain makes the constraint
// unsatisfiable.
func InBounds(label csp.Label, msg string, vars ...csp.Variable) csp.Constraint {
	return &inBounds{labeled{label, msg}, vars}
}

type intEq struct {
	labeled
	x, y csp.Variable
}

func (e *intEq) Apply(lm csp.LitMapping) z.Lit {
	return eqLit(lm, e.x, e.y)
}

// IntEq requires two int variables to take the same value.
func IntEq(label csp.Label, msg string, x, y csp.Variable) csp.Constraint {
	return &intEq{labeled{label, msg}, x, y}
}

type intNe struct {
	labeled
	x, y csp.Variable
}

func (n *intNe) Apply(lm csp.LitMapping) z.Lit {
	return neLit(lm, n.x, n.y)
}

// IntNe requires two int variables to take different values.
func IntNe(label csp.Label, msg string, x, y csp.Variable) csp.Constraint {
	return &intNe{labeled{label, msg}, x, y}
}

type eitherDiffers struct {
	labeled
	a1, a2, b1, b2 csp.Variable
}

func (e *eitherDiffers) Apply(lm csp.LitMapping) z.Lit {
	return lm.Circuit().Or(neLit(lm, e.a1, e.a2), neLit(lm, e.b1, e.b2))
}

// EitherDiffers requires that the a pair or the b pair (or both)
// take different values; with slot and room variables of two exams
// this is the unique-room-time constraint.
func EitherDiffers(label csp.Label, msg string, a1, a2, b1, b2 csp.Variable) csp.Constraint {
	return &eitherDiffers{labeled{label, msg}, a1, a2, b1, b2}
}

type separated struct {
	labeled
	x, y csp.Variable
	gap  int
}

func (s *separated) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	var ms []z.Lit
	for vx := s.x.Lo; vx <= s.x.Hi; vx++ {
		for vy := s.y.Lo; vy <= s.y.Hi; vy++ {
			if abs(vx-vy) <= s.gap {
				ms = append(ms, c.Or(lm.DomainLit(s.x.ID, vx).Not(), lm.DomainLit(s.y.ID, vy).Not()))
			}
		}
	}
	return ands(c, ms)
}

// Separated requires |x - y| > gap. With gap 1 this is the
// student-non-overlap rule: adjacent slots count as overlapping.
func Separated(label csp.Label, msg string, x, y csp.Variable, gap int) csp.Constraint {
	return &separated{labeled{label, msg}, x, y, gap}
}

type neValue struct {
	labeled
	x     csp.Variable
	value int
}

func (n *neValue) Apply(lm csp.LitMapping) z.Lit {
	if n.value < n.x.Lo || n.value > n.x.Hi {
		return lm.Circuit().T
	}
	return lm.DomainLit(n.x.ID, n.value).Not()
}

// NeValue forbids an int variable from taking a particular value.
func NeValue(label csp.Label, msg string, x csp.Variable, value int) csp.Constraint {
	return &neValue{labeled{label, msg}, x, value}
}

type valueAllowed struct {
	labeled
	x       csp.Variable
	value   int
	allowed bool
}

func (v *valueAllowed) Apply(lm csp.LitMapping) z.Lit {
	if v.allowed || v.value < v.x.Lo || v.value > v.x.Hi {
		return lm.Circuit().T
	}
	return lm.DomainLit(v.x.ID, v.value).Not()
}

// ValueAllowed encodes an implication-style guard: when allowed is
// false the variable must avoid the value, otherwise the constraint
// holds trivially. Emitting one per (exam, room) pair keeps room
// capacity conflicts attributable to the offending room.
func ValueAllowed(label csp.Label, msg string, x csp.Variable, value int, allowed bool) csp.Constraint {
	return &valueAllowed{labeled{label, msg}, x, value, allowed}
}

type equalsOneOf struct {
	labeled
	x    csp.Variable
	reps []csp.Variable
}

func (e *equalsOneOf) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	ms := make([]z.Lit, len(e.reps))
	for i, rep := range e.reps {
		ms[i] = eqLit(lm, e.x, rep)
	}
	return ors(c, ms)
}

// EqualsOneOf requires an int variable to agree with at least one of
// the representative variables; the at-most-k encoding ties every
// in-group step to one of k representatives.
func EqualsOneOf(label csp.Label, msg string, x csp.Variable, reps []csp.Variable) csp.Constraint {
	return &equalsOneOf{labeled{label, msg}, x, reps}
}

type nonDecreasing struct {
	labeled
	vars []csp.Variable
}

func (n *nonDecreasing) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	var ms []z.Lit
	for i := 0; i+1 < len(n.vars); i++ {
		x, y := n.vars[i], n.vars[i+1]
		for vx := x.Lo; vx <= x.Hi; vx++ {
			for vy := y.Lo; vy <= y.Hi; vy++ {
				if vx > vy {
					ms = append(ms, c.Or(lm.DomainLit(x.ID, vx).Not(), lm.DomainLit(y.ID, vy).Not()))
				}
			}
		}
	}
	return ands(c, ms)
}

// NonDecreasing orders the given int variables; used as symmetry
// breaking over at-most-k representatives.
func NonDecreasing(label csp.Label, msg string, vars []csp.Variable) csp.Constraint {
	return &nonDecreasing{labeled{label, msg}, vars}
}

type countAtMost struct {
	labeled
	value int
	vars  []csp.Variable
	n     int
}

func (cc *countAtMost) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	var ms []z.Lit
	for _, v := range cc.vars {
		if cc.value >= v.Lo && cc.value <= v.Hi {
			ms = append(ms, lm.DomainLit(v.ID, cc.value))
		}
	}
	if len(ms) <= cc.n {
		return c.T
	}
	return c.CardSort(ms).Leq(cc.n)
}

// CountAtMost bounds how many of the int variables take the given
// value; with step variables and a user value this is user capacity.
func CountAtMost(label csp.Label, msg string, value int, vars []csp.Variable, n int) csp.Constraint {
	return &countAtMost{labeled{label, msg}, value, vars, n}
}

type memberWhenSelected struct {
	labeled
	selector csp.Identifier
	x        csp.Variable
	values   []int
}

func (m *memberWhenSelected) Apply(lm csp.LitMapping) z.Lit {
	c := lm.Circuit()
	var within []z.Lit
	for _, v := range m.values {
		if v >= m.x.Lo && v <= m.x.Hi {
			within = append(within, lm.DomainLit(m.x.ID, v))
		}
	}
	return c.Or(lm.LitOf(m.selector).Not(), ors(c, within))
}

// MemberWhenSelected requires x to take one of the listed values
// whenever the selector boolean is true; the one-team rule for a
// single step under a selected team.
func MemberWhenSelected(label csp.Label, msg string, selector csp.Identifier, x csp.Variable, values []int) csp.Constraint {
	return &memberWhenSelected{labeled{label, msg}, selector, x, values}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
