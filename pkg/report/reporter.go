package report

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

// TargetsScale is applied to the target count in plotter lines. The plotter tool expects
// it; nothing else is known about why.
const TargetsScale = 1000

type Policy int

const (
	// PolicyPlotter emits one "{plotter:...}" line per zone whose first target is valid.
	PolicyPlotter Policy = iota
	// PolicyVerbose emits every zone and every target in human readable form.
	PolicyVerbose
)

func (p Policy) String() string {
	switch p {
	case PolicyPlotter:
		return "plotter"
	case PolicyVerbose:
		return "verbose"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plotter":
		return PolicyPlotter, nil
	case "verbose":
		return PolicyVerbose, nil
	}
	return 0, fmt.Errorf("unknown report policy %q", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Record is the formatted output for one zone.
type Record struct {
	Zone int
	Text string
}

type Reporter struct {
	policy Policy
	buf    bytes.Buffer
}

func New(policy Policy) *Reporter {
	return &Reporter{policy: policy}
}

func (r *Reporter) Policy() Policy { return r.policy }

// Tick formats one measurement. Each zone is looked at exactly once per iteration of the
// returned sequence; the sequence can be ranged over again to format the same result.
func (r *Reporter) Tick(result *rangingsensor.RangingResult, profile rangingsensor.ProfileConfig) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if result == nil {
			return
		}
		for i := range result.Zones {
			z := &result.Zones[i]
			var text string
			switch r.policy {
			case PolicyVerbose:
				text = formatVerbose(z, profile)
			default:
				if !z.Reportable() {
					continue
				}
				text = formatPlotter(z)
			}
			if !yield(Record{Zone: i, Text: text}) {
				return
			}
		}
	}
}

// Emit writes every record of one tick to w in a single write.
func (r *Reporter) Emit(w io.Writer, result *rangingsensor.RangingResult, profile rangingsensor.ProfileConfig) (int, error) {
	r.buf.Reset()
	for rec := range r.Tick(result, profile) {
		r.buf.WriteString(rec.Text)
	}
	if r.policy == PolicyVerbose {
		r.buf.WriteString("\n")
	}
	if r.buf.Len() == 0 {
		return 0, nil
	}
	return w.Write(r.buf.Bytes())
}

func formatPlotter(z *rangingsensor.ZoneResult) string {
	ambient := ToFixed(z.AmbientKcpsPerSpad[0])
	signal := ToFixed(z.SignalKcpsPerSpad[0])
	return fmt.Sprintf("{plotter:%d,%5d,%d.%02d,%d.%02d,%d}\n",
		z.Status[0],
		z.DistanceMM[0],
		ambient.Int, ambient.Frac,
		signal.Int, signal.Frac,
		z.NumberOfTargets*TargetsScale)
}

func formatVerbose(z *rangingsensor.ZoneResult, profile rangingsensor.ProfileConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nTargets = %d", z.NumberOfTargets)

	n := z.NumberOfTargets
	if n > rangingsensor.MaxTargetsPerZone {
		n = rangingsensor.MaxTargetsPerZone
	}
	for j := 0; j < n; j++ {
		sb.WriteString("\n |---> ")
		fmt.Fprintf(&sb, "Status = %d, Distance = %5d mm ", z.Status[j], z.DistanceMM[j])
		if profile.EnableAmbient {
			a := ToFixed(z.AmbientKcpsPerSpad[j])
			fmt.Fprintf(&sb, ", Ambient = %d.%02d kcps/spad", a.Int, a.Frac)
		}
		if profile.EnableSignal {
			s := ToFixed(z.SignalKcpsPerSpad[j])
			fmt.Fprintf(&sb, ", Signal = %d.%02d kcps/spad", s.Int, s.Frac)
		}
	}
	return sb.String()
}
