package gait

import (
	"errors"
	"math"
	"testing"

	"quadloop/internal/config"
	"quadloop/internal/robot"
)

func standingState(rc config.RobotConfig) robot.State {
	return robot.State{
		Pos:    robot.Vec{0, 0, rc.StandHeight},
		Vel:    robot.Vec{0, 0, 0},
		Quat:   robot.Vec{1, 0, 0, 0},
		Omega:  robot.Vec{0, 0, 0},
		Joints: make(robot.Vec, robot.NumJoints),
	}
}

func allContacts() robot.Contacts { return robot.Contacts{1, 1, 1, 1} }

func TestStandingPlanner(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewStanding()

	plan, err := p.Update(standingState(cfg.Robot), allContacts(), 0, cfg.Robot, cfg.Gait)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	for i, v := range plan.ActiveFeet {
		if v != 1 {
			t.Errorf("leg %d: expected stance, got %v", i, v)
		}
	}
	if plan.Phase != 0 || plan.StepPhase != 0 {
		t.Errorf("standing planner should not advance phase, got %v/%v", plan.Phase, plan.StepPhase)
	}
	if len(plan.StepLocations) != robot.NumJoints {
		t.Fatalf("expected %d step location values", robot.NumJoints)
	}
}

func TestTrotPhaseWraps(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewTrot()
	st := standingState(cfg.Robot)

	for _, tm := range []float64{0, 0.3, 0.6, 0.9, 1.7, 10.2} {
		plan, err := p.Update(st, allContacts(), tm, cfg.Robot, cfg.Gait)
		if err != nil {
			t.Fatalf("update at t=%v: %v", tm, err)
		}
		if plan.Phase < 0 || plan.Phase >= 1 {
			t.Errorf("t=%v: phase %v out of [0,1)", tm, plan.Phase)
		}
		if plan.StepPhase < 0 || plan.StepPhase > 1 {
			t.Errorf("t=%v: step phase %v out of [0,1]", tm, plan.StepPhase)
		}
	}
}

func TestTrotAlternatesPairs(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewTrot()
	st := standingState(cfg.Robot)

	first, err := p.Update(st, allContacts(), 0.1*cfg.Gait.Period, cfg.Robot, cfg.Gait)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	second, err := p.Update(st, allContacts(), 0.6*cfg.Gait.Period, cfg.Robot, cfg.Gait)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	for leg := 0; leg < robot.NumLegs; leg++ {
		if first.ActiveFeet[leg] == second.ActiveFeet[leg] {
			t.Errorf("leg %d: expected pair swap across half cycles", leg)
		}
	}

	// Diagonal pairs move together.
	if first.ActiveFeet[0] != first.ActiveFeet[3] || first.ActiveFeet[1] != first.ActiveFeet[2] {
		t.Errorf("expected diagonal pairing, got %v", first.ActiveFeet)
	}
}

func TestTrotStepPhaseTriangle(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewTrot()
	st := standingState(cfg.Robot)

	quarter, _ := p.Update(st, allContacts(), 0.25*cfg.Gait.Period, cfg.Robot, cfg.Gait)
	if math.Abs(quarter.StepPhase-1) > 1e-9 {
		t.Errorf("expected step phase 1 at mid swing, got %v", quarter.StepPhase)
	}
}

func TestTrotReferenceAdvances(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gait.VelocityX = 0.5
	p := NewTrot()
	st := standingState(cfg.Robot)

	early, _ := p.Update(st, allContacts(), 0.0, cfg.Robot, cfg.Gait)
	late, _ := p.Update(st, allContacts(), 2.0, cfg.Robot, cfg.Gait)

	if math.Abs((late.PRef[0]-early.PRef[0])-1.0) > 1e-9 {
		t.Errorf("expected reference to advance 1m over 2s at 0.5m/s, got %v", late.PRef[0]-early.PRef[0])
	}
	if late.PRef[2] != cfg.Robot.StandHeight {
		t.Errorf("reference height should stay at %v, got %v", cfg.Robot.StandHeight, late.PRef[2])
	}
}

func TestTrotStepTargetsRetainHeight(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gait.VelocityX = 0.4
	p := NewTrot()
	st := standingState(cfg.Robot)

	plan, _ := p.Update(st, allContacts(), 0.6*cfg.Gait.Period, cfg.Robot, cfg.Gait)
	for leg := 0; leg < robot.NumLegs; leg++ {
		if plan.StepLocations[leg*3+2] != -cfg.Robot.StandHeight {
			t.Errorf("leg %d: step target z %v", leg, plan.StepLocations[leg*3+2])
		}
	}
}

func TestTrotRejectsBadPeriod(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gait.Period = 0
	p := NewTrot()

	_, err := p.Update(standingState(cfg.Robot), allContacts(), 0, cfg.Robot, cfg.Gait)
	if !errors.Is(err, robot.ErrPlanner) {
		t.Errorf("expected planner error, got %v", err)
	}
}
