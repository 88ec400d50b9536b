package sensor

import (
	"context"
	"fmt"
	"math"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// TSL2561 register map (subset). All register accesses go through the
// command register; 0x20 selects word reads.
const (
	tslCmd  = 0x80
	tslWord = 0x20

	tslRegControl = 0x00
	tslRegTiming  = 0x01
	tslRegData0   = 0x0C
	tslRegData1   = 0x0E

	tslPowerOn  = 0x03
	tslPowerOff = 0x00

	// 402ms integration, 1x gain. Matches the datasheet reference scaling,
	// so the lux formula below needs no channel scale factor.
	tslTiming402ms = 0x02
)

// TSL2561 drives a TAOS TSL2561 luminosity sensor over I2C, the sensor the
// deployment hardware carries.
type TSL2561 struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewTSL2561 opens the named I2C bus ("" selects the first available) and
// powers the sensor up.
func NewTSL2561(busName string, addr uint16) (*TSL2561, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	s := &TSL2561{bus: bus, dev: i2c.Dev{Addr: addr, Bus: bus}}
	if err := s.SetEnabled(context.Background(), true); err != nil {
		bus.Close()
		return nil, err
	}
	if err := s.write(tslRegTiming, tslTiming402ms); err != nil {
		bus.Close()
		return nil, err
	}

	// First integration cycle after power-up.
	time.Sleep(450 * time.Millisecond)
	return s, nil
}

// ReadRawLux reads both channels and converts to lux using the datasheet
// piecewise approximation for the T package.
func (s *TSL2561) ReadRawLux(ctx context.Context) (float64, error) {
	ch0, err := s.readWord(tslRegData0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ch1, err := s.readWord(tslRegData1)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if ch0 == 0xFFFF || ch1 == 0xFFFF {
		return 0, fmt.Errorf("%w: sensor saturated", ErrUnavailable)
	}
	if ch0 == 0 {
		return 0, nil
	}

	broadband := float64(ch0)
	infrared := float64(ch1)
	ratio := infrared / broadband

	var lux float64
	switch {
	case ratio <= 0.50:
		lux = 0.0304*broadband - 0.062*broadband*math.Pow(ratio, 1.4)
	case ratio <= 0.61:
		lux = 0.0224*broadband - 0.031*infrared
	case ratio <= 0.80:
		lux = 0.0128*broadband - 0.0153*infrared
	case ratio <= 1.30:
		lux = 0.00146*broadband - 0.00112*infrared
	default:
		lux = 0
	}
	if lux < 0 {
		lux = 0
	}
	return lux, nil
}

// SetEnabled powers the sensor up or down.
func (s *TSL2561) SetEnabled(ctx context.Context, enabled bool) error {
	v := byte(tslPowerOff)
	if enabled {
		v = tslPowerOn
	}
	if err := s.write(tslRegControl, v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if enabled {
		// Let the first integration cycle complete before reads.
		time.Sleep(450 * time.Millisecond)
	}
	return nil
}

// Close powers the sensor down and releases the bus.
func (s *TSL2561) Close() error {
	_ = s.write(tslRegControl, tslPowerOff)
	return s.bus.Close()
}

func (s *TSL2561) write(reg, value byte) error {
	return s.dev.Tx([]byte{tslCmd | reg, value}, nil)
}

func (s *TSL2561) readWord(reg byte) (uint16, error) {
	var buf [2]byte
	if err := s.dev.Tx([]byte{tslCmd | tslWord | reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}
