package report

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

// StatsWindow is how many of the most recent distances Stats keeps.
const StatsWindow = 1024

// Stats counts fetch outcomes and keeps the last StatsWindow distances of reportable zones
// since the last Reset. It is only used for diagnostics and never touches the record output.
type Stats struct {
	OK       int
	NotReady int
	Faults   int

	window [StatsWindow]float64
	n      int
	next   int
}

func (s *Stats) Observe(result *rangingsensor.RangingResult) {
	s.OK++
	if result == nil {
		return
	}
	for i := range result.Zones {
		z := &result.Zones[i]
		if z.Reportable() {
			s.add(float64(z.DistanceMM[0]))
		}
	}
}

func (s *Stats) add(d float64) {
	s.window[s.next] = d
	s.next = (s.next + 1) % StatsWindow
	if s.n < StatsWindow {
		s.n++
	}
}

func (s *Stats) ObserveNotReady() { s.NotReady++ }

func (s *Stats) ObserveFault() { s.Faults++ }

type Summary struct {
	OK, NotReady, Faults int
	Samples              int
	MeanMM, StdDevMM     float64
}

func (s *Stats) Summary() Summary {
	distances := s.window[:s.n]
	sum := Summary{OK: s.OK, NotReady: s.NotReady, Faults: s.Faults, Samples: len(distances)}
	switch len(distances) {
	case 0:
	case 1:
		sum.MeanMM = distances[0]
	default:
		sum.MeanMM, sum.StdDevMM = stat.MeanStdDev(distances, nil)
	}
	return sum
}

func (s *Stats) Reset() {
	s.OK, s.NotReady, s.Faults = 0, 0, 0
	s.n, s.next = 0, 0
}

func (s Summary) String() string {
	return fmt.Sprintf("ok=%d not_ready=%d faults=%d samples=%d mean=%.1fmm stddev=%.1fmm",
		s.OK, s.NotReady, s.Faults, s.Samples, s.MeanMM, s.StdDevMM)
}
