// Package buscheck registers the built-in bus-probe group: quick
// sanity checks against whatever buses the configuration declares.
// Every probe that finds no matching device reports an INFO skip and
// passes, so the group is safe to run on any bench.
package buscheck

import (
	"fmt"
	"time"

	"github.com/hilrig/hilrig/internal/check"
	"github.com/hilrig/hilrig/internal/config"
	"github.com/hilrig/hilrig/internal/driver/adc"
	"github.com/hilrig/hilrig/internal/driver/gpio"
	"github.com/hilrig/hilrig/internal/driver/modbus"
	"github.com/hilrig/hilrig/internal/driver/uart"
	"github.com/hilrig/hilrig/internal/rig"
)

func init() {
	rig.Register(Group())
}

// Group builds the bus-probe group.
func Group() *rig.TestGroup {
	g := rig.NewGroup("Bus Checks")
	g.AddTest(rig.NewTest("GPIO output latches", testGPIOLatch))
	g.AddTest(rig.NewTest("UART echo round-trip", testUARTEcho))
	g.AddTest(rig.NewTest("Modbus link probe", testModbusProbe))
	g.AddTest(rig.NewTest("ADC reference sanity", testADCSanity))
	return g
}

// firstDevice scans both categories for the first initialized device
// implementing T.
func firstDevice[T any](e *rig.Engine) (T, bool) {
	var zero T
	for _, category := range []string{config.CategoryProtocols, config.CategoryPeripherals} {
		for _, dev := range e.Manager().Devices(category) {
			if typed, ok := dev.(T); ok {
				return typed, true
			}
		}
	}
	return zero, false
}

func testGPIOLatch(e *rig.Engine) error {
	var pin gpio.Pin
	found := false
	for _, category := range []string{config.CategoryProtocols, config.CategoryPeripherals} {
		for _, dev := range e.Manager().Devices(category) {
			if p, ok := dev.(gpio.Pin); ok && p.Direction() == "out" {
				pin, found = p, true
				break
			}
		}
	}
	if !found {
		check.Info("skipping: no output GPIO configured")
		return nil
	}

	if err := pin.Write(1); err != nil {
		return fmt.Errorf("drive high: %w", err)
	}
	v, err := pin.Read()
	if err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	check.Equal(1, v)

	if err := pin.Toggle(); err != nil {
		return fmt.Errorf("toggle: %w", err)
	}
	v, err = pin.Read()
	if err != nil {
		return fmt.Errorf("read back after toggle: %w", err)
	}
	check.Equal(0, v)
	return nil
}

func testUARTEcho(e *rig.Engine) error {
	port, ok := firstDevice[uart.Port](e)
	if !ok {
		check.Info("skipping: no UART configured")
		return nil
	}

	if err := port.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	probe := []byte("hilrig-ping")
	if err := port.Send(probe); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	got, err := port.Recv(len(probe))
	if err != nil {
		return fmt.Errorf("recv: %w", err)
	}
	check.Equal(string(probe), string(got))
	return nil
}

func testModbusProbe(e *rig.Engine) error {
	client, ok := firstDevice[modbus.Client](e)
	if !ok {
		check.Info("skipping: no Modbus device configured")
		return nil
	}

	start := time.Now()
	words, err := client.ReadHolding(0, 1)
	if err != nil {
		return fmt.Errorf("read holding register 0: %w", err)
	}
	check.True(len(words) == 1)
	check.Info(fmt.Sprintf("slave answered in %s, register 0 = %d", time.Since(start).Round(time.Millisecond), words[0]))
	return nil
}

func testADCSanity(e *rig.Engine) error {
	conv, ok := firstDevice[adc.Converter](e)
	if !ok {
		check.Info("skipping: no ADC configured")
		return nil
	}

	count, err := conv.ReadChannel(0)
	if err != nil {
		return fmt.Errorf("sample channel 0: %w", err)
	}
	check.True(count >= 0 && count <= 1023)

	v, err := conv.Voltage(0)
	if err != nil {
		return fmt.Errorf("voltage channel 0: %w", err)
	}
	check.Info(fmt.Sprintf("channel 0 reads %d counts (%.3f V)", count, v))
	return nil
}
