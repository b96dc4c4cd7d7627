// Package canlink streams tick telemetry as CAN frames: one frame per
// leg with its joint torques, plus a body pose frame.
package canlink

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.einride.tech/can"

	"quadloop/internal/robot"
)

const (
	// TorqueFrameBase + leg index addresses one leg's torque frame.
	TorqueFrameBase uint32 = 0x310
	// PoseFrameID carries body height and Euler angles.
	PoseFrameID uint32 = 0x320

	torqueScale = 0.01  // Nm per count
	heightScale = 0.001 // m per count
	angleScale  = 0.001 // rad per count
)

func packSigned(v, scale float64) uint16 {
	raw := math.Round(v / scale)
	if raw > math.MaxInt16 {
		raw = math.MaxInt16
	} else if raw < math.MinInt16 {
		raw = math.MinInt16
	}
	return uint16(int16(raw))
}

func unpackSigned(u uint16, scale float64) float64 {
	return float64(int16(u)) * scale
}

// EncodeTorques packs a 12-wide torque command into four 6-byte frames,
// one per leg, little-endian int16 per joint.
func EncodeTorques(torques robot.Vec) ([]can.Frame, error) {
	if len(torques) != robot.NumJoints {
		return nil, fmt.Errorf("canlink: expected %d torques, got %d", robot.NumJoints, len(torques))
	}

	frames := make([]can.Frame, robot.NumLegs)
	for leg := 0; leg < robot.NumLegs; leg++ {
		f := can.Frame{
			ID:     TorqueFrameBase + uint32(leg),
			Length: uint8(robot.JointsPerLeg * 2),
		}
		for j := 0; j < robot.JointsPerLeg; j++ {
			u := packSigned(torques[leg*robot.JointsPerLeg+j], torqueScale)
			binary.LittleEndian.PutUint16(f.Data[j*2:], u)
		}
		frames[leg] = f
	}
	return frames, nil
}

// DecodeTorqueFrame recovers the leg index and its three joint torques.
func DecodeTorqueFrame(f can.Frame) (int, robot.Vec, error) {
	if f.ID < TorqueFrameBase || f.ID >= TorqueFrameBase+robot.NumLegs {
		return 0, nil, fmt.Errorf("canlink: frame 0x%X is not a torque frame", f.ID)
	}
	if f.Length < robot.JointsPerLeg*2 {
		return 0, nil, fmt.Errorf("canlink: torque frame 0x%X truncated at %d bytes", f.ID, f.Length)
	}
	leg := int(f.ID - TorqueFrameBase)
	torques := make(robot.Vec, robot.JointsPerLeg)
	for j := range torques {
		torques[j] = unpackSigned(binary.LittleEndian.Uint16(f.Data[j*2:]), torqueScale)
	}
	return leg, torques, nil
}

// EncodePose packs body height and roll/pitch/yaw into one frame.
func EncodePose(pos, euler robot.Vec) (can.Frame, error) {
	if len(pos) != 3 || len(euler) != 3 {
		return can.Frame{}, fmt.Errorf("canlink: pose expects 3+3 values")
	}
	f := can.Frame{ID: PoseFrameID, Length: 8}
	binary.LittleEndian.PutUint16(f.Data[0:], packSigned(pos[2], heightScale))
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint16(f.Data[2+i*2:], packSigned(euler[i], angleScale))
	}
	return f, nil
}

// DecodePose recovers body height and Euler angles from a pose frame.
func DecodePose(f can.Frame) (height float64, euler robot.Vec, err error) {
	if f.ID != PoseFrameID {
		return 0, nil, fmt.Errorf("canlink: frame 0x%X is not a pose frame", f.ID)
	}
	if f.Length < 8 {
		return 0, nil, fmt.Errorf("canlink: pose frame truncated at %d bytes", f.Length)
	}
	height = unpackSigned(binary.LittleEndian.Uint16(f.Data[0:]), heightScale)
	euler = make(robot.Vec, 3)
	for i := range euler {
		euler[i] = unpackSigned(binary.LittleEndian.Uint16(f.Data[2+i*2:]), angleScale)
	}
	return height, euler, nil
}
