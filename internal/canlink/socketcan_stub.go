//go:build !linux && !darwin

package canlink

import (
	"context"
	"errors"
)

// Dial is unavailable without SocketCAN support.
func Dial(ctx context.Context, iface string) (FrameWriter, error) {
	return nil, errors.New("canlink: socketcan not supported on this platform")
}
