package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
)

var _ = Describe("RunAll", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	It("runs every preset and keeps the input order", func() {
		names := config.ListPresets()
		cfgs := make([]*config.Config, len(names))
		for i, name := range names {
			cfgs[i] = config.GetPreset(name)
		}

		results, err := experiment.RunAll(context.Background(), cfgs, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(cfgs)))

		for i, res := range results {
			Expect(res.Config.Name).To(Equal(names[i]))
			Expect(res.Metrics).To(HaveKeyWithValue("mass_drift", 0.0))
		}
	})

	It("tracks the first wave mode", func() {
		results, err := experiment.RunAll(context.Background(), []*config.Config{config.GetPreset("wave")}, reg)
		Expect(err).NotTo(HaveOccurred())

		res := results[0]
		Expect(res.HasAnalytical()).To(BeTrue())
		Expect(res.MaxError).To(BeNumerically("<", 5e-3))
		Expect(res.Snapshots).To(HaveLen(14000))
	})

	It("reports a broken config", func() {
		bad := config.GetPreset("rest")
		bad.Domain.Elements = 0

		_, err := experiment.RunAll(context.Background(), []*config.Config{config.GetPreset("rest"), bad}, reg)
		Expect(err).To(HaveOccurred())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := experiment.RunAll(ctx, []*config.Config{config.GetPreset("vibration")}, reg)
		Expect(err).To(MatchError(context.Canceled))
	})
})
