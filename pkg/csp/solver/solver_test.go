package solver_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/csp/constraint"
	"github.com/assignsat/assignsat/pkg/csp/solver"
)

func TestSolver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Solver Suite")
}

var _ = Describe("Check", func() {
	var (
		s   *solver.Solver
		ctx context.Context
	)

	BeforeEach(func() {
		s = solver.New()
		ctx = context.Background()
	})

	It("treats an empty model as satisfiable", func() {
		out, err := s.Check(ctx, &csp.Model{})
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusSat))
		Expect(out.Assignment).To(BeEmpty())
	})

	It("picks exactly one variable of an exactly-one group", func() {
		m := &csp.Model{
			Variables: []csp.Variable{
				csp.BoolVar("a"), csp.BoolVar("b"), csp.BoolVar("c"),
			},
			Constraints: []csp.Constraint{
				constraint.ExactlyOne(csp.NewLabel("pick", 0), "exactly one of a, b, c", "a", "b", "c"),
			},
		}
		out, err := s.Check(ctx, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusSat))
		Expect(out.Assignment["a"] + out.Assignment["b"] + out.Assignment["c"]).To(Equal(1))
	})

	It("returns the conflicting constraints on unsat", func() {
		m := &csp.Model{
			Variables: []csp.Variable{csp.BoolVar("a")},
			Constraints: []csp.Constraint{
				constraint.ExactlyOne(csp.NewLabel("pick", 0), "a must be picked", "a"),
				constraint.Forbid(csp.NewLabel("veto", 0), "a is forbidden", "a"),
			},
		}
		out, err := s.Check(ctx, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusUnsat))

		categories := make([]csp.Category, 0, len(out.Core))
		for _, c := range out.Core {
			categories = append(categories, c.Label().Category)
		}
		Expect(categories).To(ConsistOf(csp.Category("pick"), csp.Category("veto")))
	})

	It("keeps int variables inside their domains", func() {
		x := csp.IntVar("x", 0, 2)
		m := &csp.Model{
			Variables: []csp.Variable{x},
			Constraints: []csp.Constraint{
				constraint.InBounds(csp.NewLabel("range", 0), "x in range", x),
				constraint.NeValue(csp.NewLabel("ne", 0), "x is not 0", x, 0),
				constraint.NeValue(csp.NewLabel("ne", 1), "x is not 1", x, 1),
			},
		}
		out, err := s.Check(ctx, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusSat))
		Expect(out.Assignment["x"]).To(Equal(2))
	})

	It("reports an exhausted int domain as unsat", func() {
		x := csp.IntVar("x", 0, 1)
		m := &csp.Model{
			Variables: []csp.Variable{x},
			Constraints: []csp.Constraint{
				constraint.InBounds(csp.NewLabel("range", 0), "x in range", x),
				constraint.NeValue(csp.NewLabel("ne", 0), "x is not 0", x, 0),
				constraint.NeValue(csp.NewLabel("ne", 1), "x is not 1", x, 1),
			},
		}
		out, err := s.Check(ctx, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusUnsat))
		Expect(out.Core).ToNot(BeEmpty())
	})

	It("enforces separation gaps between int variables", func() {
		x := csp.IntVar("x", 0, 2)
		y := csp.IntVar("y", 0, 2)
		m := &csp.Model{
			Variables: []csp.Variable{x, y},
			Constraints: []csp.Constraint{
				constraint.InBounds(csp.NewLabel("range", 0), "x and y in range", x, y),
				constraint.Separated(csp.NewLabel("gap", 0), "x and y more than one apart", x, y, 1),
			},
		}
		out, err := s.Check(ctx, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusSat))

		diff := out.Assignment["x"] - out.Assignment["y"]
		if diff < 0 {
			diff = -diff
		}
		Expect(diff).To(BeNumerically(">", 1))
	})

	It("honors an expired context deadline with an unknown verdict", func() {
		expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()

		m := &csp.Model{
			Variables: []csp.Variable{csp.BoolVar("a")},
			Constraints: []csp.Constraint{
				constraint.ExactlyOne(csp.NewLabel("pick", 0), "a must be picked", "a"),
			},
		}
		out, err := s.Check(expired, m)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Status).To(Equal(csp.StatusUnknown))
	})
})

var _ = Describe("Enumerate", func() {
	var (
		s   *solver.Solver
		ctx context.Context
	)

	BeforeEach(func() {
		s = solver.New()
		ctx = context.Background()
	})

	model := func() *csp.Model {
		return &csp.Model{
			Variables: []csp.Variable{csp.BoolVar("a"), csp.BoolVar("b")},
			Constraints: []csp.Constraint{
				constraint.ExactlyOne(csp.NewLabel("pick", 0), "exactly one of a, b", "a", "b"),
			},
		}
	}

	It("enumerates every distinct assignment then reports exhaustion", func() {
		enum, err := s.Enumerate(ctx, model(), 10, time.Minute)
		Expect(err).ToNot(HaveOccurred())
		Expect(enum.Assignments).To(HaveLen(2))
		Expect(enum.Exhausted).To(BeTrue())
		Expect(enum.TimedOut).To(BeFalse())
		Expect(enum.Assignments[0].Equal(enum.Assignments[1])).To(BeFalse())
	})

	It("stops at the requested limit", func() {
		enum, err := s.Enumerate(ctx, model(), 1, time.Minute)
		Expect(err).ToNot(HaveOccurred())
		Expect(enum.Assignments).To(HaveLen(1))
		Expect(enum.Exhausted).To(BeFalse())
	})

	It("returns a single empty assignment for a model without variables", func() {
		enum, err := s.Enumerate(ctx, &csp.Model{}, 3, time.Minute)
		Expect(err).ToNot(HaveOccurred())
		Expect(enum.Assignments).To(HaveLen(1))
		Expect(enum.Assignments[0]).To(BeEmpty())
		Expect(enum.Exhausted).To(BeTrue())
	})

	It("ignores auxiliary variables for distinctness", func() {
		m := &csp.Model{
			Variables: []csp.Variable{csp.BoolVar("a"), csp.AuxBoolVar("helper")},
			Constraints: []csp.Constraint{
				constraint.ExactlyOne(csp.NewLabel("pick", 0), "a must be picked", "a"),
			},
		}
		enum, err := s.Enumerate(ctx, m, 10, time.Minute)
		Expect(err).ToNot(HaveOccurred())
		Expect(enum.Assignments).To(HaveLen(1))
		Expect(enum.Assignments[0]).ToNot(HaveKey(csp.Identifier("helper")))
		Expect(enum.Exhausted).To(BeTrue())
	})
})
