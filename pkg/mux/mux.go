package mux

import (
	"fmt"
	"strconv"
	"strings"

	"periph.io/x/periph/conn/i2c"
)

const (
	MuxAddr = 0x70

	// Sensor positions on the expansion board.
	PortCenter = 0
	PortLeft   = 1
	PortRight  = 2

	NumPorts = 8
)

type Interface interface {
	DisableAllPorts() error
	SelectSinglePort(num int) error
	SelectMultiplePorts(i byte) error
	Close() error
}

type Mux struct {
	dev *i2c.Dev
}

func New(bus i2c.Bus) Interface {
	return &Mux{
		dev: &i2c.Dev{Addr: MuxAddr, Bus: bus},
	}
}

func (p *Mux) SelectSinglePort(num int) error {
	if num < 0 || num >= NumPorts {
		return fmt.Errorf("mux port %d out of range", num)
	}
	data := []byte{1 << uint(num)}
	return p.dev.Tx(data, nil)
}

func (p *Mux) SelectMultiplePorts(i byte) error {
	data := []byte{i}
	return p.dev.Tx(data, nil)
}

func (p *Mux) DisableAllPorts() error {
	data := []byte{0}
	return p.dev.Tx(data, nil)
}

// Close deselects every port. The bus belongs to the caller.
func (p *Mux) Close() error {
	return p.DisableAllPorts()
}

// ParsePort accepts a sensor position name or a port number.
func ParsePort(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center", "centre":
		return PortCenter, nil
	case "left":
		return PortLeft, nil
	case "right":
		return PortRight, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n >= NumPorts {
		return 0, fmt.Errorf("unknown mux port %q", s)
	}
	return n, nil
}

func Dummy() Interface {
	return &dummyMux{}
}

type dummyMux struct {
}

func (p *dummyMux) SelectSinglePort(num int) error {
	fmt.Printf("Dummy Mux setting port=%d\n", num)
	return nil
}

func (p *dummyMux) DisableAllPorts() error {
	fmt.Printf("Dummy Mux disabling all ports\n")
	return nil
}

func (p *dummyMux) SelectMultiplePorts(i byte) error {
	fmt.Printf("Dummy Mux setting ports=%#08b\n", i)
	return nil
}

func (p *dummyMux) Close() error {
	return nil
}
