package loop_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"quadloop/internal/config"
	"quadloop/internal/gait"
	"quadloop/internal/loop"
	"quadloop/internal/robot"
	"quadloop/internal/stance"
	"quadloop/internal/swing"
)

type stubStateEstimator struct {
	st  robot.State
	err error
}

func (s *stubStateEstimator) Update(robot.SensorData) (robot.State, error) {
	return s.st, s.err
}

type stubContactEstimator struct {
	contacts robot.Contacts
	err      error
}

func (s *stubContactEstimator) Update(robot.SensorData) (robot.Contacts, error) {
	return s.contacts.Clone(), s.err
}

type stubPlanner struct {
	plan gait.Plan
	err  error
}

func (s *stubPlanner) Update(robot.State, robot.Contacts, float64,
	config.RobotConfig, config.GaitConfig) (gait.Plan, error) {
	return s.plan, s.err
}

type stubSwing struct {
	out   swing.Output
	calls int
}

func (s *stubSwing) Update(robot.State, float64, robot.Vec, robot.Vec, robot.Vec,
	config.RobotConfig, config.SwingConfig) swing.Output {
	s.calls++
	return s.out
}

type stubStance struct {
	out      stance.Output
	err      error
	prevSeen []robot.Vec
}

func (s *stubStance) Update(st robot.State, feet, active, pRef, rpyRef,
	prev robot.Vec, rc config.RobotConfig, fc config.ForceConfig) (stance.Output, error) {
	s.prevSeen = append(s.prevSeen, prev.Clone())
	if s.err != nil {
		return stance.Output{}, s.err
	}
	return s.out, nil
}

func constVec(n int, v float64) robot.Vec {
	out := make(robot.Vec, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func identityFK(rc config.RobotConfig, joints, quat robot.Vec) robot.Vec {
	return make(robot.Vec, robot.NumJoints)
}

var _ = Describe("ControlLoop", func() {
	var (
		cfg        *config.Config
		stateEst   *stubStateEstimator
		contactEst *stubContactEstimator
		planner    *stubPlanner
		swingCtrl  *stubSwing
		stanceCtrl *stubStance
		snapshot   robot.SensorData
	)

	newLoop := func() *loop.Loop {
		l, err := loop.New(cfg, stateEst, contactEst, planner, swingCtrl, stanceCtrl, identityFK)
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	BeforeEach(func() {
		cfg = config.DefaultConfig()

		stateEst = &stubStateEstimator{st: robot.State{
			Pos:    robot.Vec{0, 0, cfg.Robot.StandHeight},
			Vel:    robot.Vec{0, 0, 0},
			Quat:   robot.Vec{1, 0, 0, 0},
			Omega:  robot.Vec{0, 0, 0},
			Joints: make(robot.Vec, robot.NumJoints),
		}}
		contactEst = &stubContactEstimator{contacts: robot.Contacts{1, 1, 1, 1}}
		planner = &stubPlanner{plan: gait.Plan{
			StepLocations:     make(robot.Vec, robot.NumJoints),
			PrevStepLocations: make(robot.Vec, robot.NumJoints),
			PRef:              robot.Vec{0, 0, cfg.Robot.StandHeight},
			RPYRef:            robot.Vec{0, 0, 0},
			ActiveFeet:        robot.Vec{1, 1, 1, 1},
			Phase:             0.25,
			StepPhase:         0.5,
		}}
		swingCtrl = &stubSwing{out: swing.Output{
			Torques:       constVec(robot.NumJoints, 2),
			Forces:        constVec(robot.NumJoints, 1),
			Trajectory:    constVec(robot.NumJoints, 0.1),
			FootPositions: constVec(robot.NumJoints, 0.2),
		}}
		stanceCtrl = &stubStance{out: stance.Output{
			Torques:    constVec(robot.NumJoints, 5),
			FootForces: constVec(robot.NumJoints, 10),
			RefWrench:  constVec(6, 3),
		}}
		snapshot = robot.SensorData{}
	})

	It("returns exactly twelve torques", func() {
		torques, err := newLoop().Tick(snapshot)
		Expect(err).NotTo(HaveOccurred())
		Expect(torques).To(HaveLen(robot.NumJoints))
	})

	Describe("blending", func() {
		It("passes stance torques through for an all-stance mask", func() {
			planner.plan.ActiveFeet = robot.Vec{1, 1, 1, 1}
			torques, err := newLoop().Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())
			for k := range torques {
				Expect(torques[k]).To(Equal(stanceCtrl.out.Torques[k]))
			}
		})

		It("passes swing torques through for an all-swing mask", func() {
			planner.plan.ActiveFeet = robot.Vec{0, 0, 0, 0}
			torques, err := newLoop().Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())
			for k := range torques {
				Expect(torques[k]).To(Equal(swingCtrl.out.Torques[k]))
			}
		})

		It("forms the convex combination for fractional masks", func() {
			planner.plan.ActiveFeet = robot.Vec{0.25, 0.5, 0.75, 1}
			torques, err := newLoop().Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			mask := robot.ExpandLegMask(planner.plan.ActiveFeet)
			for k := range torques {
				want := mask[k]*stanceCtrl.out.Torques[k] + (1-mask[k])*swingCtrl.out.Torques[k]
				Expect(torques[k]).To(BeNumerically("~", want, 1e-12))
			}
		})
	})

	Describe("time and counters", func() {
		It("advances t by dt per successful tick", func() {
			l := newLoop()
			const n = 7
			for i := 0; i < n; i++ {
				_, err := l.Tick(snapshot)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(l.Ticks()).To(Equal(n))
			Expect(l.Time()).To(BeNumerically("~", float64(n)*cfg.Loop.Dt, 1e-12))
		})
	})

	Describe("failure policy", func() {
		It("leaves time, counters and the log untouched when the stance solve fails", func() {
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			before := l.FlushLog()
			stanceCtrl.err = fmt.Errorf("%w: contact pattern", robot.ErrInfeasible)

			_, err = l.Tick(snapshot)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, robot.ErrInfeasible)).To(BeTrue())

			Expect(l.Ticks()).To(Equal(1))
			Expect(l.Time()).To(BeNumerically("~", cfg.Loop.Dt, 1e-12))

			after := l.FlushLog()
			Expect(after[loop.ChanTorques][0]).To(HaveLen(1))
			Expect(after).To(Equal(before))
		})

		It("surfaces estimation failures with their kind", func() {
			stateEst.err = fmt.Errorf("%w: imu dropout", robot.ErrEstimation)
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(errors.Is(err, robot.ErrEstimation)).To(BeTrue())
			Expect(l.Ticks()).To(BeZero())

			var tickErr *robot.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Stage).To(Equal("state estimation"))
		})

		It("rejects malformed planner output as a planner error", func() {
			planner.plan.ActiveFeet = robot.Vec{1, 1, 1} // short
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(errors.Is(err, robot.ErrPlanner)).To(BeTrue())
		})

		It("rejects an out-of-range phase", func() {
			planner.plan.Phase = 1.0
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(errors.Is(err, robot.ErrPlanner)).To(BeTrue())
		})
	})

	Describe("statistics", func() {
		It("tracks the running maximum of absolute torques and forces", func() {
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			stanceCtrl.out.Torques = constVec(robot.NumJoints, -9)
			stanceCtrl.out.FootForces = constVec(robot.NumJoints, 4)
			_, err = l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			snap := l.DebugSnapshot()
			for k := 0; k < robot.NumJoints; k++ {
				Expect(snap.MaxTorques[k]).To(Equal(9.0))
				Expect(snap.MaxForces[k]).To(Equal(10.0))
			}
		})
	})

	Describe("warm start", func() {
		It("seeds the stance solver with the static support guess, then the previous solution", func() {
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())
			_, err = l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			Expect(stanceCtrl.prevSeen).To(HaveLen(2))
			static := cfg.Robot.Mass * config.Gravity / robot.NumLegs
			for leg := 0; leg < robot.NumLegs; leg++ {
				Expect(stanceCtrl.prevSeen[0][leg*3+2]).To(BeNumerically("~", static, 1e-12))
			}
			Expect(stanceCtrl.prevSeen[1]).To(Equal(stanceCtrl.out.FootForces))
		})
	})

	Describe("logging", func() {
		It("records every tracked channel each tick", func() {
			l := newLoop()
			_, err := l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			log := l.FlushLog()
			Expect(log).To(HaveLen(11))
			Expect(log[loop.ChanPhase][0][0]).To(Equal(0.25))
			Expect(log[loop.ChanStepPhase][0][0]).To(Equal(0.5))
			Expect(log[loop.ChanActiveFeet]).To(HaveLen(robot.NumLegs))
			Expect(log[loop.ChanRefWrench]).To(HaveLen(6))
			for k := 0; k < robot.NumJoints; k++ {
				Expect(log[loop.ChanForces][k][0]).To(Equal(10.0))
			}
		})
	})

	Describe("construction", func() {
		It("fails outright on invalid configuration", func() {
			cfg.Loop.Dt = 0
			_, err := loop.New(cfg, stateEst, contactEst, planner, swingCtrl, stanceCtrl, identityFK)
			Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
		})

		It("fails outright on a missing collaborator", func() {
			_, err := loop.New(cfg, nil, contactEst, planner, swingCtrl, stanceCtrl, identityFK)
			Expect(errors.Is(err, robot.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("debug snapshot", func() {
		It("reflects the last committed tick", func() {
			l := newLoop()
			Expect(l.DebugSnapshot().Torques).To(BeEmpty())

			_, err := l.Tick(snapshot)
			Expect(err).NotTo(HaveOccurred())

			snap := l.DebugSnapshot()
			Expect(snap.Tick).To(Equal(0))
			Expect(snap.Time).To(BeZero())
			Expect(snap.Position[2]).To(Equal(cfg.Robot.StandHeight))
			Expect(snap.Contacts).To(Equal(robot.Contacts{1, 1, 1, 1}))
		})
	})
})
