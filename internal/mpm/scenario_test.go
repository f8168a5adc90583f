package mpm_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpm1d/internal/mpm"
)

func buildModel(density, young, x0, x1 float64, elements, ppe int, total float64) *mpm.Model {
	mat, err := mpm.NewMaterial(density, young)
	Expect(err).NotTo(HaveOccurred())
	mesh, err := mpm.NewMesh(x0, x1, elements)
	Expect(err).NotTo(HaveOccurred())
	Expect(mesh.GenerateMesh(mat)).To(Succeed())
	model, err := mpm.NewModel(mesh, ppe, total)
	Expect(err).NotTo(HaveOccurred())
	return model
}

func comVelocities(model *mpm.Model) []float64 {
	res := model.Result()
	v := make([]float64, len(res))
	for i, snap := range res {
		v[i] = snap.CenterOfMassVelocity()
	}
	return v
}

var _ = Describe("free vibration of a single element", func() {
	const (
		v0    = 0.1
		total = 10.0
	)
	young := 4 * math.Pi * math.Pi
	omega := math.Sqrt(young) / 1.0

	var (
		model *mpm.Model
		v     []float64
		times []float64
	)

	BeforeEach(func() {
		model = buildModel(1, young, 0, 1, 1, 1, total)
		model.Particles()[0].Velocity = v0
		model.Mesh().Nodes[0].Fix()

		Expect(model.Solve(context.Background())).To(Succeed())
		v = comVelocities(model)
		times = model.DiscreteTimeSteps()
	})

	It("records one snapshot per step", func() {
		Expect(model.Result()).To(HaveLen(model.NumberOfSteps()))
		Expect(float64(model.NumberOfSteps()) * model.Dt()).To(BeNumerically("~", total, 1e-9))
	})

	It("oscillates at the natural frequency", func() {
		var crossings []float64
		for i := 1; i < len(v); i++ {
			if v[i-1] < 0 && v[i] >= 0 {
				f := -v[i-1] / (v[i] - v[i-1])
				crossings = append(crossings, times[i-1]+f*(times[i]-times[i-1]))
			}
		}
		Expect(len(crossings)).To(BeNumerically(">=", 9))

		period := (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1)
		Expect(period).To(BeNumerically("~", 2*math.Pi/omega, 0.01))
		Expect(crossings[0]).To(BeNumerically("~", 0.75, 0.02))
	})

	// USL damps the single-particle bar, peaks shrink about 27% per period
	// and the max error against v0*cos(wt) reaches 0.0957 over 629 steps.
	It("starts on the closed-form solution and never gains energy", func() {
		Expect(v[0]).To(Equal(v0))
		for i := 0; i < 5; i++ {
			Expect(v[i]).To(BeNumerically("~", v0*math.Cos(omega*times[i]), 3e-3))
		}

		perPeriod := int(math.Round(2 * math.Pi / omega / model.Dt()))
		prev := math.Inf(1)
		for start := 0; start+perPeriod <= len(v); start += perPeriod {
			peak := 0.0
			for _, x := range v[start : start+perPeriod] {
				peak = math.Max(peak, math.Abs(x))
			}
			Expect(peak).To(BeNumerically("<=", v0))
			Expect(peak).To(BeNumerically("<", prev))
			prev = peak
		}
	})

	It("keeps the particle inside its element", func() {
		for _, snap := range model.Result() {
			x := snap.Particle(0).X
			Expect(x).To(BeNumerically(">", 0))
			Expect(x).To(BeNumerically("<", 1))
			Expect(snap.Particle(0).CurrentVolume).To(BeNumerically("~", snap.Particle(0).DeformationGradient, 1e-12))
		}
	})
})

var _ = Describe("first-mode wave in a fixed-free bar", func() {
	const (
		v0     = 0.1
		length = 25.0
		young  = 100.0
		total  = 140.0
	)
	beta := (math.Pi / length) / 2
	omega := beta * math.Sqrt(young)

	var (
		model *mpm.Model
		v     []float64
		times []float64
	)

	BeforeEach(func() {
		model = buildModel(1, young, 0, length, 25, 2, total)
		model.SetVelocityField(func(x float64) float64 { return v0 * math.Sin(beta*x) })
		model.Mesh().Nodes[0].Fix()

		Expect(model.Solve(context.Background())).To(Succeed())
		v = comVelocities(model)
		times = model.DiscreteTimeSteps()
	})

	It("tracks the closed-form center of mass velocity", func() {
		Expect(v).To(HaveLen(model.NumberOfSteps()))

		maxErr, earlyErr := 0.0, 0.0
		for i := range v {
			e := math.Abs(v[i] - v0*math.Cos(omega*times[i])/(beta*length))
			maxErr = math.Max(maxErr, e)
			if i < len(v)/10 {
				earlyErr = math.Max(earlyErr, e)
			}
		}
		Expect(earlyErr).To(BeNumerically("<", 1e-3))
		Expect(maxErr).To(BeNumerically("<", 5e-3))
	})

	It("conserves mass and keeps particles in the domain", func() {
		want := model.Snapshot(0).TotalMass()
		Expect(want).To(BeNumerically("~", length, 1e-9))
		for _, snap := range model.Result() {
			Expect(snap.TotalMass()).To(Equal(want))
			snap.Each(func(_ int, p mpm.Particle) {
				Expect(p.X).To(BeNumerically(">=", 0))
				Expect(p.X).To(BeNumerically("<=", length))
			})
		}
	})

	It("never diverges", func() {
		for _, x := range v {
			Expect(math.Abs(x)).To(BeNumerically("<", 2*v0/(beta*length)))
		}
	})
})
