// Command hilrig validates peripherals attached to a host controller.
package main

import (
	"os"

	"github.com/hilrig/hilrig/internal/cli"

	// Driver registration. Importing a driver package makes its
	// config stanza constructible.
	_ "github.com/hilrig/hilrig/internal/driver/adc"
	_ "github.com/hilrig/hilrig/internal/driver/canbus"
	_ "github.com/hilrig/hilrig/internal/driver/gpio"
	_ "github.com/hilrig/hilrig/internal/driver/i2c"
	_ "github.com/hilrig/hilrig/internal/driver/modbus"
	_ "github.com/hilrig/hilrig/internal/driver/onewire"
	_ "github.com/hilrig/hilrig/internal/driver/pwm"
	_ "github.com/hilrig/hilrig/internal/driver/spi"
	_ "github.com/hilrig/hilrig/internal/driver/uart"

	// Built-in test suites.
	_ "github.com/hilrig/hilrig/internal/suites/buscheck"
	_ "github.com/hilrig/hilrig/internal/suites/selftest"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
