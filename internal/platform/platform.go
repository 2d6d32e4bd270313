// Package platform answers the one question the framework needs from
// the host: is this a Raspberry Pi with real peripherals, or a
// development machine that should run against simulated devices.
package platform

import (
	"os"
	"strings"
)

// procRoot is swapped by tests to point at fixture files.
var procRoot = "/proc"

// IsRaspberryPi reports whether the host is Raspberry Pi class
// hardware. Detection reads the device-tree model first and falls back
// to /proc/cpuinfo; both absent means not a Pi.
func IsRaspberryPi() bool {
	if model, err := os.ReadFile(procRoot + "/device-tree/model"); err == nil {
		if strings.Contains(string(model), "Raspberry Pi") {
			return true
		}
	}
	info, err := os.ReadFile(procRoot + "/cpuinfo")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(info), "\n") {
		if strings.HasPrefix(line, "Model") && strings.Contains(line, "Raspberry Pi") {
			return true
		}
		if strings.HasPrefix(line, "Hardware") && strings.Contains(line, "BCM") {
			return true
		}
	}
	return false
}
