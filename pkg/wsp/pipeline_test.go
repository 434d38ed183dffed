package wsp_test

import (
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/assignsat/assignsat/pkg/csp"
	"github.com/assignsat/assignsat/pkg/wsp"
)

func TestWSP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WSP Suite")
}

func parse(text string) *wsp.Instance {
	inst, err := wsp.ParseInstance(strings.NewReader(text))
	Expect(err).ToNot(HaveOccurred())
	return inst
}

func solve(inst *wsp.Instance, encoding string, limit int) *wsp.Result {
	result, err := wsp.Solve(context.Background(), inst, wsp.Options{
		Encoding: encoding,
		Limit:    limit,
		Timeout:  time.Minute,
	})
	Expect(err).ToNot(HaveOccurred())
	return result
}

var _ = Describe("Solve", func() {
	for _, encoding := range []string{"matrix", "int"} {
		encoding := encoding

		Context("with the "+encoding+" encoding", func() {
			It("finds the unique solution of a forced instance", func() {
				inst := parse(`Steps: 2
Users: 2
Constraints: 3
Authorisations u1 s1
Authorisations u2 s2
Separation-of-duty s1 s2
`)
				result := solve(inst, encoding, 5)
				Expect(result.Status).To(Equal(csp.StatusSat))
				Expect(result.Solutions).To(ConsistOf(wsp.Solution{1: 1, 2: 2}))
				Expect(result.Incomplete).To(BeFalse())

				ok, violations := wsp.Validate(inst, result.Solutions[0])
				Expect(ok).To(BeTrue())
				Expect(violations).To(BeEmpty())
			})

			It("reports a terminal conflict for binding against disjoint authorisations", func() {
				inst := parse(`Steps: 2
Users: 2
Constraints: 3
Authorisations u1 s1
Authorisations u2 s2
Binding-of-duty s1 s2
`)
				result := solve(inst, encoding, 1)
				Expect(result.Status).To(Equal(csp.StatusUnsat))
				Expect(result.Solutions).To(BeEmpty())
				Expect(result.Core).ToNot(BeEmpty())

				categories := map[csp.Category]bool{}
				for _, c := range result.Core {
					categories[c.Label().Category] = true
				}
				Expect(categories).To(HaveKey(wsp.CategoryBinding))
			})

			It("collapses at-most-1 groups onto a single user", func() {
				inst := parse(`Steps: 3
Users: 3
Constraints: 1
At-most-k 1 s1 s2 s3
`)
				result := solve(inst, encoding, 30)
				Expect(result.Status).To(Equal(csp.StatusSat))
				Expect(result.Solutions).ToNot(BeEmpty())
				for _, sol := range result.Solutions {
					distinct := map[int]bool{}
					for _, u := range sol {
						distinct[u] = true
					}
					Expect(distinct).To(HaveLen(1))
				}
			})

			It("returns every solution when fewer exist than requested", func() {
				inst := parse(`Steps: 1
Users: 3
Constraints: 0
`)
				result := solve(inst, encoding, 10)
				Expect(result.Status).To(Equal(csp.StatusSat))
				Expect(result.Solutions).To(HaveLen(3))
				Expect(result.Incomplete).To(BeFalse())
			})

			It("treats an instance without steps as trivially satisfiable", func() {
				inst := parse(`Steps: 0
Users: 2
Constraints: 0
`)
				result := solve(inst, encoding, 3)
				Expect(result.Status).To(Equal(csp.StatusSat))
				Expect(result.Solutions).To(ConsistOf(wsp.Solution{}))
			})

			It("keeps one-team assignments inside a single team", func() {
				inst := parse(`Steps: 2
Users: 4
Constraints: 1
One-team s1 s2 (u1 u2) (u3 u4)
`)
				result := solve(inst, encoding, 50)
				Expect(result.Status).To(Equal(csp.StatusSat))
				Expect(result.Solutions).ToNot(BeEmpty())
				for _, sol := range result.Solutions {
					ok, violations := wsp.Validate(inst, sol)
					Expect(ok).To(BeTrue(), "unexpected violations: %v", violations)
				}
			})
		})
	}

	It("rejects an unknown encoding", func() {
		inst := parse(`Steps: 1
Users: 1
Constraints: 0
`)
		_, err := wsp.Solve(context.Background(), inst, wsp.Options{Encoding: "binary", Limit: 1})
		Expect(err).To(HaveOccurred())
	})
})
