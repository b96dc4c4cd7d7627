package plant

import (
	"math"
	"testing"

	"quadloop/internal/config"
	"quadloop/internal/robot"
)

func TestStepAtRest(t *testing.T) {
	cfg := config.DefaultConfig()
	p := New(cfg.Robot, cfg.Loop.Dt)

	snap := p.Step(make(robot.Vec, robot.NumJoints))

	if len(snap.FootForces) != robot.NumLegs {
		t.Fatalf("expected %d foot forces", robot.NumLegs)
	}
	weightShare := cfg.Robot.Mass * config.Gravity / robot.NumLegs
	for leg, f := range snap.FootForces {
		if math.Abs(f-weightShare) > weightShare*0.1 {
			t.Errorf("leg %d: expected ~%v N at rest, got %v", leg, weightShare, f)
		}
	}
}

func TestStepSnapshotValid(t *testing.T) {
	cfg := config.DefaultConfig()
	p := New(cfg.Robot, cfg.Loop.Dt)

	for i := 0; i < 200; i++ {
		snap := p.Step(make(robot.Vec, robot.NumJoints))
		if !snap.JointPos.IsFinite() || !snap.BodyPos.IsFinite() || !snap.FootForces.IsFinite() {
			t.Fatalf("non-finite snapshot at step %d", i)
		}
	}
}

func TestStepRespondsToTorque(t *testing.T) {
	cfg := config.DefaultConfig()
	p := New(cfg.Robot, cfg.Loop.Dt)

	torques := make(robot.Vec, robot.NumJoints)
	torques[1] = 3 // hip of leg 0

	base := p.Step(make(robot.Vec, robot.NumJoints)).JointPos[1]
	var moved float64
	for i := 0; i < 100; i++ {
		moved = p.Step(torques).JointPos[1]
	}
	if moved <= base {
		t.Errorf("positive hip torque should move the joint, got %v -> %v", base, moved)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	cfg := config.DefaultConfig()
	p := New(cfg.Robot, cfg.Loop.Dt)

	a := p.Step(make(robot.Vec, robot.NumJoints))
	a.JointPos[0] = 42
	b := p.Step(make(robot.Vec, robot.NumJoints))
	if b.JointPos[0] == 42 {
		t.Error("snapshot must not alias plant state")
	}
}
