package mux

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/periph/conn/physic"
)

type tx struct {
	addr uint16
	w    []byte
}

type fakeBus struct {
	txs []tx
	err error
}

func (b *fakeBus) String() string { return "fake" }

func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.txs = append(b.txs, tx{addr: addr, w: append([]byte(nil), w...)})
	return nil
}

func TestSelectSinglePortWritesBit(t *testing.T) {
	bus := &fakeBus{}
	m := New(bus)

	for port, want := range []byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80} {
		if err := m.SelectSinglePort(port); err != nil {
			t.Fatalf("SelectSinglePort(%d) failed: %v", port, err)
		}
		last := bus.txs[len(bus.txs)-1]
		if last.addr != MuxAddr {
			t.Errorf("port %d: wrote to %#x, want %#x", port, last.addr, MuxAddr)
		}
		if !bytes.Equal(last.w, []byte{want}) {
			t.Errorf("port %d: wrote %v, want %v", port, last.w, []byte{want})
		}
	}

	if err := m.SelectSinglePort(8); err == nil {
		t.Error("expected port 8 to be rejected")
	}
}

func TestDisableAndClose(t *testing.T) {
	bus := &fakeBus{}
	m := New(bus)
	if err := m.SelectMultiplePorts(0x05); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if len(bus.txs) != 2 || !bytes.Equal(bus.txs[0].w, []byte{0x05}) || !bytes.Equal(bus.txs[1].w, []byte{0}) {
		t.Errorf("unexpected transactions: %+v", bus.txs)
	}
}

func TestBusErrorPropagates(t *testing.T) {
	boom := errors.New("nack")
	m := New(&fakeBus{err: boom})
	if err := m.SelectSinglePort(PortLeft); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestParsePort(t *testing.T) {
	for in, want := range map[string]int{
		"center": PortCenter,
		"Centre": PortCenter,
		"left":   PortLeft,
		"right":  PortRight,
		"5":      5,
	} {
		got, err := ParsePort(in)
		if err != nil || got != want {
			t.Errorf("ParsePort(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "up", "8", "-1", "3x"} {
		if _, err := ParsePort(in); err == nil {
			t.Errorf("ParsePort(%q) should fail", in)
		}
	}
}
