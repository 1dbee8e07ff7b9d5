package changelog_test

import (
	"bytes"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/network"
)

type tripleNode struct{}

func (tripleNode) Name() string                                          { return "triple" }
func (tripleNode) States() int                                           { return 3 }
func (tripleNode) DefaultParams(*network.System, network.Node) []float64 { return nil }
func (tripleNode) Derive(*network.System, network.Node, dynamo.State, dynamo.State, float64) {
}

type weightArc struct{}

func (weightArc) Name() string                                         { return "weight" }
func (weightArc) States() int                                          { return 1 }
func (weightArc) DefaultParams(*network.System, network.Arc) []float64 { return nil }
func (weightArc) Derive(*network.System, network.Arc, dynamo.State, dynamo.State, float64) {
}

// recorder appends a tagged line per call to a shared journal.
type recorder struct {
	changelog.Nop
	name    string
	journal *[]string
	err     error
}

func (r recorder) EndStep(step changelog.StepType) {
	*r.journal = append(*r.journal, fmt.Sprintf("%s:end:%s", r.name, step))
}

func (r recorder) Rollback() {
	*r.journal = append(*r.journal, r.name+":rollback")
}

func (r recorder) Commit() error {
	*r.journal = append(*r.journal, r.name+":commit")
	return r.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

var _ = Describe("Stream", func() {
	var (
		sys  *network.System
		out  *bytes.Buffer
		log  *changelog.Stream
		u, v network.Node
	)

	BeforeEach(func() {
		sys = network.New(network.WithSeed(1))
		sys.RegisterNodeDynamic(tripleNode{})
		sys.RegisterArcDynamic(weightArc{})
		var err error
		u, err = sys.AddNode("triple")
		Expect(err).NotTo(HaveOccurred())
		v, err = sys.AddNode("triple")
		Expect(err).NotTo(HaveOccurred())
		_, err = sys.AddArc(u, v, "weight")
		Expect(err).NotTo(HaveOccurred())
		sys.RefreshStateIDs()

		out = &bytes.Buffer{}
		log = changelog.NewStream(out)
	})

	It("writes nothing before commit", func() {
		log.AddNode(sys, u)
		log.EndStep(changelog.EvoStep)
		Expect(out.Len()).To(BeZero())
		Expect(log.Pending()).To(BeNumerically(">", 0))
	})

	It("formats structural records by key", func() {
		a, _ := sys.FindArc(u, v)
		log.AddNode(sys, v)
		log.AddArc(sys, u, v)
		log.UpdateNode(sys, u)
		log.UpdateArc(sys, a)
		log.EraseArc(sys, a)
		log.EraseNode(sys, u)
		log.EndStep(changelog.InitStep)
		log.EndStep(changelog.SimStep)
		log.EndStep(changelog.EvoStep)
		Expect(log.Commit()).To(Succeed())

		Expect(out.String()).To(Equal("N+,1\nE+,0,1\nNU,0\nEU,0,1\nE-,0,1\nN-,0\n---\n-\n--\n"))
	})

	It("dumps node then arc states", func() {
		x := dynamo.State{1, 0.5, -2, 3, 4, 5e-7, 0.1}
		log.NewState(sys, x)
		Expect(log.Commit()).To(Succeed())

		Expect(out.String()).To(Equal("NS,0,1,0.5,-2\nNS,1,3,4,5e-07\nES,0,1,0.1\n"))
	})

	It("discards pending records on rollback", func() {
		log.AddNode(sys, u)
		log.Rollback()
		log.EndStep(changelog.SimStep)
		Expect(log.Commit()).To(Succeed())
		Expect(out.String()).To(Equal("-\n"))
	})

	It("clears the buffer after a failed write", func() {
		failing := changelog.NewStream(failingWriter{})
		failing.AddNode(sys, u)
		Expect(failing.Commit()).To(MatchError("disk full"))
		Expect(failing.Pending()).To(BeZero())
	})

	It("skips state dumps for zero width kinds", func() {
		bare := network.New(network.WithSeed(1))
		n, _ := bare.AddNode(network.NoNodeDynamicName)
		bare.AddArc(n, n, network.NoArcDynamicName)
		bare.RefreshStateIDs()

		log.NewState(bare, dynamo.State{})
		Expect(log.Commit()).To(Succeed())
		Expect(out.Len()).To(BeZero())
	})
})

var _ = Describe("Set", func() {
	It("fans out in registration order", func() {
		var journal []string
		set := changelog.NewSet(recorder{name: "a", journal: &journal})
		set.Add(recorder{name: "b", journal: &journal})
		Expect(set.Len()).To(Equal(2))

		set.EndStep(changelog.SimStep)
		set.Rollback()
		Expect(set.Commit()).To(Succeed())

		Expect(journal).To(Equal([]string{
			"a:end:sim", "b:end:sim",
			"a:rollback", "b:rollback",
			"a:commit", "b:commit",
		}))
	})

	It("commits every logger and reports the first error", func() {
		var journal []string
		first := errors.New("first")
		set := changelog.NewSet(
			recorder{name: "a", journal: &journal, err: first},
			recorder{name: "b", journal: &journal, err: errors.New("second")},
			recorder{name: "c", journal: &journal},
		)

		Expect(set.Commit()).To(MatchError(first))
		Expect(journal).To(Equal([]string{"a:commit", "b:commit", "c:commit"}))
	})

	It("streams through to a Stream logger", func() {
		sys := network.New(network.WithSeed(1))
		n, _ := sys.AddNode(network.NoNodeDynamicName)
		out := &bytes.Buffer{}
		set := changelog.NewSet(changelog.Nop{}, changelog.NewStream(out))

		set.AddNode(sys, n)
		set.EndStep(changelog.EvoStep)
		Expect(set.Commit()).To(Succeed())
		Expect(out.String()).To(Equal("N+,0\n--\n"))
	})
})

var _ = Describe("StepType", func() {
	DescribeTable("String",
		func(s changelog.StepType, want string) {
			Expect(s.String()).To(Equal(want))
		},
		Entry("init", changelog.InitStep, "init"),
		Entry("sim", changelog.SimStep, "sim"),
		Entry("evo", changelog.EvoStep, "evo"),
	)
})
