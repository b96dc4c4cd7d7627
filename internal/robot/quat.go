package robot

import "math"

// QuatToEuler converts a wxyz unit quaternion to ZYX Euler angles
// (roll, pitch, yaw).
func QuatToEuler(q Vec) Vec {
	w, x, y, z := q[0], q[1], q[2], q[3]

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Vec{roll, pitch, yaw}
}

// QuatConjugate returns the inverse rotation of a unit quaternion.
func QuatConjugate(q Vec) Vec {
	return Vec{q[0], -q[1], -q[2], -q[3]}
}

// QuatRotate rotates a 3-vector by a wxyz unit quaternion.
func QuatRotate(q, v Vec) Vec {
	w, x, y, z := q[0], q[1], q[2], q[3]

	// t = 2 * (qvec x v)
	tx := 2 * (y*v[2] - z*v[1])
	ty := 2 * (z*v[0] - x*v[2])
	tz := 2 * (x*v[1] - y*v[0])

	// v' = v + w*t + qvec x t
	return Vec{
		v[0] + w*tx + y*tz - z*ty,
		v[1] + w*ty + z*tx - x*tz,
		v[2] + w*tz + x*ty - y*tx,
	}
}
