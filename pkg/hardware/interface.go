package hardware

import (
	"context"
	"io"

	"periph.io/x/periph/conn/i2c"

	"github.com/tigerbot-team/tigerbot/go-ranger/pkg/button"
)

// Interface is the board support the ranging loop needs: the sensor bus, the console the
// records are printed on and the user button.
type Interface interface {
	// Start kicks off background work such as the button watcher.
	Start(ctx context.Context)

	I2CBus() i2c.Bus
	Console() io.Writer
	Button() *button.Latch

	Close() error
}
