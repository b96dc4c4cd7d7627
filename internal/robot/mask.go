package robot

// ExpandLegMask repeats each per-leg value once per joint, preserving leg
// order: mask12[3j+c] = mask4[j]. The mask must have NumLegs entries; the
// loop verifies collaborator output widths before calling.
func ExpandLegMask(mask Vec) Vec {
	out := make(Vec, NumJoints)
	for j := 0; j < NumLegs; j++ {
		for c := 0; c < JointsPerLeg; c++ {
			out[j*JointsPerLeg+c] = mask[j]
		}
	}
	return out
}
