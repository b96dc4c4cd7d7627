package loop

import (
	"fmt"

	"quadloop/internal/config"
	"quadloop/internal/estimator"
	"quadloop/internal/gait"
	"quadloop/internal/kinematics"
	"quadloop/internal/robot"
	"quadloop/internal/stance"
	"quadloop/internal/swing"
)

// Build assembles a loop from the stock collaborators selected by the
// configuration.
func Build(cfg *config.Config) (*Loop, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", robot.ErrConfiguration)
	}

	var planner GaitPlanner
	switch cfg.Gait.Planner {
	case "stand":
		planner = gait.NewStanding()
	case "trot":
		planner = gait.NewTrot()
	default:
		return nil, fmt.Errorf("%w: unknown planner %q", robot.ErrConfiguration, cfg.Gait.Planner)
	}

	// A foot counts as loaded above an eighth of the body weight.
	contactThreshold := cfg.Robot.Mass * config.Gravity / 8

	return New(cfg,
		estimator.NewStateEstimator(),
		estimator.NewContactEstimator(contactThreshold),
		planner,
		swing.NewPD(),
		stance.NewBalance(),
		kinematics.Forward,
	)
}
