package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
)

func runPreset(t *testing.T, name string, mutate func(c *config.Config)) *experiment.Result {
	t.Helper()
	cfg := config.GetPreset(name)
	if mutate != nil {
		mutate(cfg)
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func fixedClock(st *Store, unix int64) {
	st.now = func() time.Time { return time.Unix(unix, 0) }
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	fixedClock(st, 1700000000)

	res := runPreset(t, "vibration", func(c *config.Config) { c.TotalTime = 1 })

	runID, err := st.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID != "vibration_1700000000" {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "vibration" || meta.Steps != len(res.Snapshots) || meta.Particles != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if !meta.HasAnalytical || meta.MaxError != res.MaxError {
		t.Errorf("expected max error %v, got %v", res.MaxError, meta.MaxError)
	}
	if meta.Config.Material.Young != res.Config.Material.Young {
		t.Errorf("config not stored: %+v", meta.Config)
	}
	if len(meta.Nodes) != 2 || len(meta.FixedNodes) != 1 || meta.FixedNodes[0] != 0 {
		t.Errorf("unexpected nodes %v fixed %v", meta.Nodes, meta.FixedNodes)
	}

	com, err := st.LoadCenterOfMass(runID)
	if err != nil {
		t.Fatalf("load com failed: %v", err)
	}
	if len(com.Times) != len(res.Times) || len(com.Analytical) != len(res.Times) {
		t.Fatalf("expected %d rows, got %d/%d", len(res.Times), len(com.Times), len(com.Analytical))
	}
	for i := range res.Times {
		if math.Abs(com.Velocity[i]-res.COMVelocity[i]) > 1e-9*math.Max(1, math.Abs(res.COMVelocity[i])) {
			t.Fatalf("row %d: velocity %v, want %v", i, com.Velocity[i], res.COMVelocity[i])
		}
	}

	frames, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	if len(frames) != len(res.Snapshots) {
		t.Fatalf("expected %d frames, got %d", len(res.Snapshots), len(frames))
	}
	last := frames[len(frames)-1]
	want := res.Snapshots[len(res.Snapshots)-1].Particle(0)
	if last.Step != len(frames)-1 || math.Abs(last.Particles[0].X-want.X) > 1e-8 {
		t.Errorf("last frame %+v, want x=%v", last, want.X)
	}
}

func TestSaveWithoutAnalytical(t *testing.T) {
	st := New(t.TempDir())
	res := runPreset(t, "rest", nil)

	runID, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	com, err := st.LoadCenterOfMass(runID)
	if err != nil {
		t.Fatal(err)
	}
	if com.Analytical != nil {
		t.Error("expected no analytical column values")
	}
	frames, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames[0].Particles) != 8 {
		t.Errorf("expected 8 particles per frame, got %d", len(frames[0].Particles))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	fixedClock(st, 100)

	for _, name := range []string{"b10", "b2", "b1"} {
		res := runPreset(t, "rest", func(c *config.Config) {
			c.Name = name
			c.TotalTime = 0.01
		})
		if _, err := st.Save(res); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"b1_100", "b2_100", "b10_100"}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %d", len(want), len(runs))
	}
	for i := range want {
		if runs[i].ID != want[i] {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want[i])
		}
	}
}

func TestSaveCollision(t *testing.T) {
	st := New(t.TempDir())
	fixedClock(st, 42)
	res := runPreset(t, "rest", func(c *config.Config) { c.TotalTime = 0.01 })

	first, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("run ids collide: %s", first)
	}
	if second != "rest_42_2" {
		t.Errorf("unexpected second id %s", second)
	}
}

func TestSaveFailureLeavesNoRun(t *testing.T) {
	base := t.TempDir()
	st := New(base)
	fixedClock(st, 7)

	res := runPreset(t, "rest", func(c *config.Config) { c.TotalTime = 0.01 })
	res.Metrics["unencodable"] = math.NaN()

	if _, err := st.Save(res); err == nil {
		t.Fatal("expected error for a metric json cannot encode")
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("partial run left behind: %v", entries)
	}

	delete(res.Metrics, "unencodable")
	runID, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	if runID != "rest_7" {
		t.Errorf("run id %q, want rest_7", runID)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	res := runPreset(t, "vibration", func(c *config.Config) { c.TotalTime = 0.5 })
	runID, err := st.Save(res)
	if err != nil {
		t.Fatal(err)
	}

	var csvOut bytes.Buffer
	if err := st.ExportCSV(runID, &csvOut); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if lines[0] != "time,com_velocity,com_position,analytical" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != len(res.Times)+1 {
		t.Errorf("expected %d lines, got %d", len(res.Times)+1, len(lines))
	}

	var jsonOut bytes.Buffer
	if err := st.ExportJSON(runID, true, &jsonOut); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(jsonOut.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != runID || len(data.Times) != len(res.Times) {
		t.Errorf("unexpected export %+v", data.Run)
	}
	if len(data.Positions) != len(res.Times) || len(data.Positions[0]) != 1 {
		t.Errorf("expected positions per step")
	}

	if err := st.ExportJSON("nope", false, &jsonOut); err == nil {
		t.Error("expected error for unknown run")
	}
}
