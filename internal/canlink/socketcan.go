//go:build linux || darwin

package canlink

import (
	"context"
	"fmt"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type socketCANWriter struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

// Dial opens a SocketCAN interface ("can0", "vcan0") for transmission.
func Dial(ctx context.Context, iface string) (FrameWriter, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("canlink: dial %s: %w", iface, err)
	}
	return &socketCANWriter{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (w *socketCANWriter) TransmitFrame(ctx context.Context, f can.Frame) error {
	return w.tx.TransmitFrame(ctx, f)
}

func (w *socketCANWriter) Close() error {
	return w.conn.Close()
}
