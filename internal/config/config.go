// Package config loads and validates the robot, gait, swing and force
// controller parameter bundles.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quadloop/internal/robot"
)

const (
	DefaultDt          = 0.001
	DefaultLogCapacity = 10
	DefaultLogChunk    = 1000

	DefaultMass        = 7.5
	DefaultBodyLength  = 0.66
	DefaultBodyWidth   = 0.176
	DefaultUpperLeg    = 0.32
	DefaultLowerLeg    = 0.32
	DefaultStandHeight = 0.32
	DefaultMaxTorque   = 12.0

	DefaultGaitPeriod = 0.6
	DefaultStepGain   = 0.18

	DefaultSwingKp    = 400.0
	DefaultSwingKd    = 20.0
	DefaultLiftHeight = 0.08

	Gravity = 9.81
)

type Config struct {
	Loop  LoopConfig  `yaml:"loop"`
	Robot RobotConfig `yaml:"robot"`
	Gait  GaitConfig  `yaml:"gait"`
	Swing SwingConfig `yaml:"swing"`
	Force ForceConfig `yaml:"force"`
}

// LoopConfig owns the control period and recorder sizing.
type LoopConfig struct {
	Dt          float64 `yaml:"dt"`
	LogCapacity int     `yaml:"log_capacity"`
	LogChunk    int     `yaml:"log_chunk"`
}

// RobotConfig is the physical parameter bundle forwarded to every
// collaborator unchanged.
type RobotConfig struct {
	Mass        float64 `yaml:"mass"`
	BodyLength  float64 `yaml:"body_length"`
	BodyWidth   float64 `yaml:"body_width"`
	UpperLeg    float64 `yaml:"upper_leg"`
	LowerLeg    float64 `yaml:"lower_leg"`
	StandHeight float64 `yaml:"stand_height"`
	MaxTorque   float64 `yaml:"max_torque"`
}

type GaitConfig struct {
	Planner   string  `yaml:"planner"` // "stand" or "trot"
	Period    float64 `yaml:"period"`
	VelocityX float64 `yaml:"velocity_x"`
	VelocityY float64 `yaml:"velocity_y"`
	StepGain  float64 `yaml:"step_gain"`
}

type SwingConfig struct {
	Kp         float64 `yaml:"kp"`
	Kd         float64 `yaml:"kd"`
	LiftHeight float64 `yaml:"lift_height"`
}

// ForceConfig holds the balance controller gains and force limits.
type ForceConfig struct {
	KpPos    float64 `yaml:"kp_pos"`
	KdPos    float64 `yaml:"kd_pos"`
	KpRot    float64 `yaml:"kp_rot"`
	KdRot    float64 `yaml:"kd_rot"`
	MaxForce float64 `yaml:"max_force"`
	Friction float64 `yaml:"friction"`
}

func DefaultConfig() *Config {
	return &Config{
		Loop: LoopConfig{
			Dt:          DefaultDt,
			LogCapacity: DefaultLogCapacity,
			LogChunk:    DefaultLogChunk,
		},
		Robot: RobotConfig{
			Mass:        DefaultMass,
			BodyLength:  DefaultBodyLength,
			BodyWidth:   DefaultBodyWidth,
			UpperLeg:    DefaultUpperLeg,
			LowerLeg:    DefaultLowerLeg,
			StandHeight: DefaultStandHeight,
			MaxTorque:   DefaultMaxTorque,
		},
		Gait: GaitConfig{
			Planner:  "trot",
			Period:   DefaultGaitPeriod,
			StepGain: DefaultStepGain,
		},
		Swing: SwingConfig{
			Kp:         DefaultSwingKp,
			Kd:         DefaultSwingKd,
			LiftHeight: DefaultLiftHeight,
		},
		Force: ForceConfig{
			KpPos:    800,
			KdPos:    30,
			KpRot:    120,
			KdRot:    10,
			MaxForce: 200,
			Friction: 0.8,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every range once, up front. A failure here is fatal;
// nothing validated here is re-checked mid-run.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", robot.ErrConfiguration, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Loop.Dt <= 0:
		return fail("dt %v must be positive", c.Loop.Dt)
	case c.Loop.LogCapacity <= 0:
		return fail("log_capacity %d must be positive", c.Loop.LogCapacity)
	case c.Loop.LogChunk <= 0:
		return fail("log_chunk %d must be positive", c.Loop.LogChunk)
	case c.Robot.Mass <= 0:
		return fail("mass %v must be positive", c.Robot.Mass)
	case c.Robot.UpperLeg <= 0 || c.Robot.LowerLeg <= 0:
		return fail("leg segment lengths must be positive")
	case c.Robot.StandHeight <= 0 || c.Robot.StandHeight >= c.Robot.UpperLeg+c.Robot.LowerLeg:
		return fail("stand_height %v outside leg reach", c.Robot.StandHeight)
	case c.Robot.MaxTorque <= 0:
		return fail("max_torque %v must be positive", c.Robot.MaxTorque)
	case c.Gait.Planner != "stand" && c.Gait.Planner != "trot":
		return fail("unknown planner %q", c.Gait.Planner)
	case c.Gait.Period <= 0:
		return fail("gait period %v must be positive", c.Gait.Period)
	case c.Swing.LiftHeight < 0:
		return fail("lift_height %v must be non-negative", c.Swing.LiftHeight)
	case c.Force.Friction <= 0:
		return fail("friction %v must be positive", c.Force.Friction)
	case c.Force.MaxForce <= 0:
		return fail("max_force %v must be positive", c.Force.MaxForce)
	}
	return nil
}
