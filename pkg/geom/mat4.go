package geom

// upEpsilon is the threshold below which the look direction is treated as
// parallel to the requested up vector.
const upEpsilon = 1e-6

// Mat4 is a 4x4 matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns the position stored in the matrix.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Right returns the first rotation column.
func (m Mat4) Right() Vec3 {
	return Vec3{m[0], m[1], m[2]}
}

// Up returns the second rotation column.
func (m Mat4) Up() Vec3 {
	return Vec3{m[4], m[5], m[6]}
}

// Back returns the third rotation column. For a camera pose this is the
// negated view direction, since the camera looks down its local -Z axis.
func (m Mat4) Back() Vec3 {
	return Vec3{m[8], m[9], m[10]}
}

// LookAtPose returns a rigid camera pose positioned at eye and oriented
// towards target. The rotation columns are (right, up, -forward) so the
// camera looks down its local -Z axis in a right-handed frame.
//
// When the look direction is nearly parallel to up, an alternate up vector
// is substituted to avoid normalizing a near-zero cross product.
func LookAtPose(eye, target, up Vec3) Mat4 {
	forward := target.Sub(eye).Normalize()

	right := forward.Cross(up)
	if right.Length() < upEpsilon {
		if abs32(forward.Z) < 0.9 {
			up = Vec3{0, 0, 1}
		} else {
			up = Vec3{1, 0, 0}
		}
		right = forward.Cross(up)
	}
	right = right.Normalize()

	// Recompute up so the basis is orthonormal.
	up = right.Cross(forward).Normalize()

	return Mat4{
		right.X, right.Y, right.Z, 0,
		up.X, up.Y, up.Z, 0,
		-forward.X, -forward.Y, -forward.Z, 0,
		eye.X, eye.Y, eye.Z, 1,
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
