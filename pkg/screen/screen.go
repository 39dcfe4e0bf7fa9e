package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/rangingsensor"
)

const (
	S = 128

	refreshInterval = 500 * time.Millisecond
	// Full scale of the range bar.
	maxBarMM = 4000
)

// Screen shows the latest zone 0 distance on a small RGB565 framebuffer. It is fed through
// Observe from the polling loop.
type Screen struct {
	lock       sync.Mutex
	distanceMM int
	valid      bool
	samples    int
}

func New() *Screen {
	return &Screen{}
}

func (s *Screen) Observe(result *rangingsensor.RangingResult) {
	if result == nil || len(result.Zones) == 0 {
		return
	}
	z := &result.Zones[0]
	s.lock.Lock()
	s.samples++
	s.valid = z.Reportable()
	if s.valid {
		s.distanceMM = z.DistanceMM[0]
	}
	s.lock.Unlock()
}

func (s *Screen) snapshot() (distanceMM int, valid bool, samples int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.distanceMM, s.valid, s.samples
}

// LoopUpdatingScreen redraws the framebuffer at path until ctx is done, then blanks it.
func (s *Screen) LoopUpdatingScreen(ctx context.Context, path string) {
	f, err := os.OpenFile(path, os.O_RDWR, 0666)
	if err != nil {
		fmt.Println("Failed to open screen, ignoring")
		return
	}
	defer f.Close()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	var buf [S * S * 2]byte
	for {
		select {
		case <-ctx.Done():
			var blank [S * S * 2]byte
			_, _ = f.Seek(0, 0)
			_, _ = f.Write(blank[:])
			return
		case <-ticker.C:
		}

		dc := s.Draw()
		EncodeRGB565(dc.Image(), buf[:])

		_, err = f.Seek(0, 0)
		if err != nil {
			fmt.Println("Screen failure: ", err)
			return
		}
		for i := 0; i < S; i++ {
			_, err = f.Write(buf[i*S*2 : i*S*2+S*2])
			if err != nil {
				fmt.Println("Screen failure: ", err)
				return
			}
			time.Sleep(10 * time.Microsecond)
		}
	}
}

// Draw renders the current state.
func (s *Screen) Draw() *gg.Context {
	distanceMM, valid, samples := s.snapshot()

	dc := gg.NewContext(S, S)
	dc.SetRGBA(1, 0.9, 0, 1)
	dc.DrawString("RANGE", 5, 15)

	switch {
	case samples == 0:
		dc.DrawString("waiting...", 5, 40)
	case !valid:
		DrawWarning(dc, 20, 40)
		dc.SetRGBA(1, 0.9, 0, 1)
		dc.DrawString(fmt.Sprintf("%d mm", distanceMM), 40, 44)
	default:
		dc.DrawString(fmt.Sprintf("%d mm", distanceMM), 5, 44)
	}
	drawRangeBar(dc, distanceMM, valid)
	return dc
}

func drawRangeBar(dc *gg.Context, distanceMM int, valid bool) {
	frac := float64(distanceMM) / maxBarMM
	if frac > 1 {
		frac = 1
	}
	if !valid {
		dc.SetRGBA(1, 0.2, 0, 1)
	}
	dc.DrawRectangle(5, 100, S-10, 2)
	for n := 0; n < 12; n++ {
		if frac >= float64(n+1)/12 {
			dc.DrawRectangle(5+float64(n)*float64(S-10)/12, 80, float64(S-10)/12-2, 16)
		}
	}
	dc.Fill()
}

func DrawWarning(dc *gg.Context, x, y float64) {
	dc.Push()
	dc.Translate(x, y)
	dc.SetRGB(1, 0.2, 0)
	dc.DrawRegularPolygon(3, 0, 0, 14, 0)
	dc.Fill()
	dc.SetRGBA(0, 0, 0, 0.9)
	dc.DrawString("!", -3, 3)
	dc.Pop()
}

// EncodeRGB565 packs a S×S image into the panel's little-endian RGB565 layout. The panel is
// mounted rotated, so rows of the image become columns of the framebuffer.
func EncodeRGB565(img image.Image, buf []byte) {
	for y := 0; y < S; y++ {
		for x := 0; x < S; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(S-1-y)*2+x*S*2+1] = (rb << 3) | (gb >> 3)
			buf[(S-1-y)*2+x*S*2] = bb | (gb << 5)
		}
	}
}
