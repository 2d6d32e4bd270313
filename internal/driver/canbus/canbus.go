// Package canbus drives a SocketCAN interface through
// go.einride.tech/can. The interface name is the exclusive resource.
// Bitrate is configured out-of-band (ip link); the config value is
// documentation for the operator.
package canbus

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/hilrig/hilrig/internal/device"
)

// Bus is the operation surface test bodies use.
type Bus interface {
	Send(id uint32, data []byte) error
	// Recv waits up to timeout for the next frame.
	Recv(timeout time.Duration) (can.Frame, error)
}

// Config is the decoded can stanza.
type Config struct {
	Iface   string // e.g. can0
	Bitrate int    // informational only
}

func init() {
	device.Register("can", func(spec device.Spec, simulate bool) (device.Device, error) {
		iface, err := spec.StrRequired("iface")
		if err != nil {
			return nil, err
		}
		cfg := Config{Iface: iface, Bitrate: spec.Int("bitrate", 0)}
		if simulate {
			return NewSim(spec.Name, cfg), nil
		}
		return New(spec.Name, cfg), nil
	})
}

// Device is a SocketCAN interface on real hardware.
type Device struct {
	device.Logging
	name string
	cfg  Config
	conn net.Conn
	tx   *socketcan.Transmitter
	rx   *socketcan.Receiver
}

// New creates an unopened CAN device.
func New(name string, cfg Config) *Device {
	return &Device{name: name, cfg: cfg}
}

func (d *Device) Name() string { return d.name }

func (d *Device) RequiredResources() device.Resources {
	return device.Resources{Ports: []string{d.cfg.Iface}}
}

func (d *Device) Params() map[string]string {
	params := map[string]string{"iface": d.cfg.Iface}
	if d.cfg.Bitrate > 0 {
		params["bitrate"] = fmt.Sprintf("%d", d.cfg.Bitrate)
	}
	return params
}

func (d *Device) Initialize() error {
	conn, err := socketcan.DialContext(context.Background(), "can", d.cfg.Iface)
	if err != nil {
		return fmt.Errorf("dial %s: %w", d.cfg.Iface, err)
	}
	d.conn = conn
	d.tx = socketcan.NewTransmitter(conn)
	d.rx = socketcan.NewReceiver(conn)
	return nil
}

func (d *Device) Release() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn, d.tx, d.rx = nil, nil, nil
	if err != nil {
		return fmt.Errorf("close %s: %w", d.cfg.Iface, err)
	}
	return nil
}

func (d *Device) Send(id uint32, data []byte) error {
	if d.tx == nil {
		return fmt.Errorf("can %q: not initialized", d.name)
	}
	if len(data) > can.MaxDataLength {
		return fmt.Errorf("can %q: payload %d exceeds %d bytes", d.name, len(data), can.MaxDataLength)
	}
	frame := can.Frame{ID: id, Length: uint8(len(data))}
	copy(frame.Data[:], data)
	if d.Verbose() {
		slog.Debug("can send", "device", d.name, "id", id, "bytes", len(data))
	}
	if err := d.tx.TransmitFrame(context.Background(), frame); err != nil {
		return fmt.Errorf("transmit on %s: %w", d.cfg.Iface, err)
	}
	return nil
}

func (d *Device) Recv(timeout time.Duration) (can.Frame, error) {
	if d.rx == nil {
		return can.Frame{}, fmt.Errorf("can %q: not initialized", d.name)
	}
	if err := d.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return can.Frame{}, fmt.Errorf("set deadline on %s: %w", d.cfg.Iface, err)
	}
	if !d.rx.Receive() {
		if err := d.rx.Err(); err != nil {
			return can.Frame{}, fmt.Errorf("receive on %s: %w", d.cfg.Iface, err)
		}
		return can.Frame{}, fmt.Errorf("receive on %s: closed", d.cfg.Iface)
	}
	frame := d.rx.Frame()
	if d.Verbose() {
		slog.Debug("can recv", "device", d.name, "id", frame.ID, "bytes", frame.Length)
	}
	return frame, nil
}
