package panel

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// MCP23017 registers, bank 0 addressing.
const (
	regIODIRA = 0x00
	regIODIRB = 0x01
	regGPPUA  = 0x0C
	regGPPUB  = 0x0D
	regGPIOA  = 0x12
	regGPIOB  = 0x13
)

// Expander is the register interface of the I/O expander. Port A drives the
// LEDs; port B scans the button matrix.
type Expander interface {
	WriteRegister(reg, value byte) error
	ReadRegister(reg byte) (byte, error)
}

// MCP23017 talks to the expander over I2C.
type MCP23017 struct {
	dev    *i2c.Dev
	closer func() error
}

// OpenMCP23017 initialises the host drivers and opens the chip at addr on
// the named bus. An empty bus name picks the first available bus.
func OpenMCP23017(bus string, addr uint16) (*MCP23017, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise periph host: %w", err)
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", bus, err)
	}
	return &MCP23017{
		dev:    &i2c.Dev{Addr: addr, Bus: b},
		closer: b.Close,
	}, nil
}

func (m *MCP23017) WriteRegister(reg, value byte) error {
	return m.dev.Tx([]byte{reg, value}, nil)
}

func (m *MCP23017) ReadRegister(reg byte) (byte, error) {
	r := make([]byte, 1)
	if err := m.dev.Tx([]byte{reg}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (m *MCP23017) Close() error {
	return m.closer()
}
