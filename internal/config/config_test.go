package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
simulate: true

protocols:
  - type: modbus
    name: plc_link
    port: /dev/ttyUSB0
    baudrate: 19200
    parity: E
    unit: 3

peripherals:
  - type: gpio
    name: relay
    pin: 17
    direction: out
    initial: 0
  - type: uart
    name: console
    port: /dev/ttyAMA0
    baudrate: 115200

report:
  log: run.log
  html: report.html

history:
  path: runs.db
`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	require.True(t, cfg.Simulate != nil && *cfg.Simulate)
	require.Len(t, cfg.Protocols, 1)
	require.Len(t, cfg.Peripherals, 2)
	assert.Equal(t, "modbus", cfg.Protocols[0]["type"])
	assert.Equal(t, "relay", cfg.Peripherals[0]["name"])
	assert.Equal(t, "run.log", cfg.Report.Log)
	assert.Equal(t, "report.html", cfg.Report.HTML)
	assert.Equal(t, "runs.db", cfg.History.Path)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hilrig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Peripherals, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_UnknownTopLevelKey(t *testing.T) {
	_, err := Parse([]byte("peripherals: []\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestParse_SchemaRejectsBadStanza(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
peripherals:
  - type: warp_drive
    name: x
`,
		"pin out of range": `
peripherals:
  - type: gpio
    name: led
    pin: 99
    direction: out
`,
		"bad direction": `
peripherals:
  - type: gpio
    name: led
    pin: 4
    direction: sideways
`,
		"modbus bad parity": `
protocols:
  - type: modbus
    name: plc
    port: /dev/ttyUSB0
    parity: X
`,
		"empty port": `
peripherals:
  - type: uart
    name: console
    port: ""
`,
	}
	for label, yaml := range cases {
		t.Run(label, func(t *testing.T) {
			_, err := Parse([]byte(yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema")
		})
	}
}

func TestParse_DuplicateNames(t *testing.T) {
	doc := `
protocols:
  - type: modbus
    name: shared
    port: /dev/ttyUSB0
peripherals:
  - type: gpio
    name: shared
    pin: 4
    direction: in
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate device name")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse([]byte("{}\n"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Simulate)
	assert.Empty(t, cfg.Protocols)
}

func TestSimulateResolved(t *testing.T) {
	yes, no := true, false

	cfg := &Config{}
	assert.True(t, cfg.SimulateResolved(true))
	assert.False(t, cfg.SimulateResolved(false))

	cfg.Simulate = &yes
	assert.True(t, cfg.SimulateResolved(false))

	cfg.Simulate = &no
	assert.False(t, cfg.SimulateResolved(true))
}
