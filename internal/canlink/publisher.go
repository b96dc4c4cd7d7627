package canlink

import (
	"context"

	"go.einride.tech/can"

	"quadloop/internal/robot"
)

// FrameWriter is the transmit side of a CAN bus connection.
type FrameWriter interface {
	TransmitFrame(ctx context.Context, f can.Frame) error
	Close() error
}

// Publisher emits one tick's telemetry as a burst of frames.
type Publisher struct {
	w FrameWriter
}

func NewPublisher(w FrameWriter) *Publisher {
	return &Publisher{w: w}
}

// PublishTick transmits the four torque frames followed by the pose
// frame. A transmit failure aborts the burst.
func (p *Publisher) PublishTick(ctx context.Context, torques, pos, euler robot.Vec) error {
	frames, err := EncodeTorques(torques)
	if err != nil {
		return err
	}
	pose, err := EncodePose(pos, euler)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := p.w.TransmitFrame(ctx, f); err != nil {
			return err
		}
	}
	return p.w.TransmitFrame(ctx, pose)
}

func (p *Publisher) Close() error {
	return p.w.Close()
}
