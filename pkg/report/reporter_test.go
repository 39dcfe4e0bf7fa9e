package report

import (
	"bytes"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

func zone(status, targets, distance int, ambient, signal float32) rangingsensor.ZoneResult {
	var z rangingsensor.ZoneResult
	z.NumberOfTargets = targets
	z.Status[0] = status
	z.DistanceMM[0] = distance
	z.AmbientKcpsPerSpad[0] = ambient
	z.SignalKcpsPerSpad[0] = signal
	return z
}

func TestPlotterEndToEnd(t *testing.T) {
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{
		zone(0, 1, 250, 10.5, 20.25),
		zone(1, 0, 0, 0, 0),
	}}

	var out bytes.Buffer
	r := New(PolicyPlotter)
	if _, err := r.Emit(&out, result, rangingsensor.DefaultProfile()); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if diff := cmp.Diff("{plotter:0,  250,10.50,20.25,1000}\n", out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPlotterFilter(t *testing.T) {
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{
		zone(0, 0, 100, 1, 1), // no target
		zone(4, 1, 100, 1, 1), // bad status
		zone(0, 3, 1234, 0.5, 7.75),
		zone(7, 0, 0, 0, 0),
	}}
	// Slots beyond the first are ignored even when the zone has more targets.
	result.Zones[2].DistanceMM[1] = 4000
	result.Zones[2].Status[1] = 0

	recs := slices.Collect(New(PolicyPlotter).Tick(result, rangingsensor.DefaultProfile()))
	want := []Record{{Zone: 2, Text: "{plotter:0, 1234,0.50,7.75,3000}\n"}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestPlotterEmitsNothingForEmptyTick(t *testing.T) {
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{zone(2, 0, 0, 0, 0)}}
	var out bytes.Buffer
	n, err := New(PolicyPlotter).Emit(&out, result, rangingsensor.DefaultProfile())
	if err != nil || n != 0 || out.Len() != 0 {
		t.Fatalf("expected no output, got %q (n=%d err=%v)", out.String(), n, err)
	}
}

func TestTickIsRestartableAndStoppable(t *testing.T) {
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{
		zone(0, 1, 10, 0, 0),
		zone(0, 1, 20, 0, 0),
	}}
	seq := New(PolicyPlotter).Tick(result, rangingsensor.DefaultProfile())

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 2 || !cmp.Equal(first, second) {
		t.Fatalf("sequence not restartable: %v vs %v", first, second)
	}

	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected early stop after 1 record, got %d", n)
	}
}

func TestVerboseMatchesUnfilteredFormat(t *testing.T) {
	z0 := zone(0, 2, 250, 10.5, 20.25)
	z0.Status[1] = 7
	z0.DistanceMM[1] = 1800
	z0.AmbientKcpsPerSpad[1] = 0.25
	z0.SignalKcpsPerSpad[1] = 1.5
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{z0, zone(2, 0, 0, 0, 0)}}

	var out bytes.Buffer
	if _, err := New(PolicyVerbose).Emit(&out, result, rangingsensor.DefaultProfile()); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "\nTargets = 2" +
		"\n |---> Status = 0, Distance =   250 mm , Ambient = 10.50 kcps/spad, Signal = 20.25 kcps/spad" +
		"\n |---> Status = 7, Distance =  1800 mm , Ambient = 0.25 kcps/spad, Signal = 1.50 kcps/spad" +
		"\nTargets = 0" +
		"\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestVerboseHonoursChannelFlags(t *testing.T) {
	result := &rangingsensor.RangingResult{Zones: []rangingsensor.ZoneResult{zone(0, 1, 42, 1, 2)}}
	profile := rangingsensor.DefaultProfile()
	profile.EnableAmbient = false
	profile.EnableSignal = false

	var out bytes.Buffer
	if _, err := New(PolicyVerbose).Emit(&out, result, profile); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := "\nTargets = 1\n |---> Status = 0, Distance =    42 mm \n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyPlotter, "plotter": PolicyPlotter, " Verbose ": PolicyVerbose} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("csv"); err == nil {
		t.Errorf("expected error for unknown policy")
	}
}
