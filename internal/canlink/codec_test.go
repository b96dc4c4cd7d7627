package canlink

import (
	"math"
	"testing"

	"quadloop/internal/robot"
)

func TestTorqueRoundTrip(t *testing.T) {
	torques := robot.Vec{
		1.25, -3.5, 0.01,
		11.99, -11.99, 0,
		2.75, 2.75, -2.75,
		0.5, -0.5, 7.77,
	}

	frames, err := EncodeTorques(torques)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(frames) != robot.NumLegs {
		t.Fatalf("expected %d frames, got %d", robot.NumLegs, len(frames))
	}

	for _, f := range frames {
		leg, got, err := DecodeTorqueFrame(f)
		if err != nil {
			t.Fatalf("decode 0x%X: %v", f.ID, err)
		}
		for j := range got {
			want := torques[leg*robot.JointsPerLeg+j]
			if math.Abs(got[j]-want) > torqueScale/2 {
				t.Errorf("leg %d joint %d: expected %v, got %v", leg, j, want, got[j])
			}
		}
	}
}

func TestTorqueClampsToRange(t *testing.T) {
	torques := make(robot.Vec, robot.NumJoints)
	torques[0] = 1e6
	torques[1] = -1e6

	frames, err := EncodeTorques(torques)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, got, err := DecodeTorqueFrame(frames[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0] != math.MaxInt16*torqueScale {
		t.Errorf("expected positive clamp, got %v", got[0])
	}
	if got[1] != math.MinInt16*torqueScale {
		t.Errorf("expected negative clamp, got %v", got[1])
	}
}

func TestEncodeTorquesRejectsBadWidth(t *testing.T) {
	if _, err := EncodeTorques(make(robot.Vec, 7)); err == nil {
		t.Error("expected error for short torque vector")
	}
}

func TestPoseRoundTrip(t *testing.T) {
	pos := robot.Vec{0.1, -0.05, 0.317}
	euler := robot.Vec{0.02, -0.015, 1.234}

	f, err := EncodePose(pos, euler)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	height, got, err := DecodePose(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(height-pos[2]) > heightScale/2 {
		t.Errorf("height: expected %v, got %v", pos[2], height)
	}
	for i := range euler {
		if math.Abs(got[i]-euler[i]) > angleScale/2 {
			t.Errorf("euler[%d]: expected %v, got %v", i, euler[i], got[i])
		}
	}
}

func TestDecodeRejectsForeignFrames(t *testing.T) {
	frames, err := EncodeTorques(make(robot.Vec, robot.NumJoints))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := DecodePose(frames[0]); err == nil {
		t.Error("torque frame must not decode as pose")
	}

	pose, err := EncodePose(robot.Vec{0, 0, 0.3}, robot.Vec{0, 0, 0})
	if err != nil {
		t.Fatalf("encode pose: %v", err)
	}
	if _, _, err := DecodeTorqueFrame(pose); err == nil {
		t.Error("pose frame must not decode as torques")
	}
}
