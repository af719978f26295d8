package geom

import "github.com/chewxy/math32"

// DirectionToEuler converts a direction vector to Euler angles that orient
// an object (typically a light) along that direction.
// Returns (pitch, 0, yaw) in radians; lights carry no roll.
func DirectionToEuler(dir Vec3) Vec3 {
	d := dir.Normalize()

	pitch := math32.Asin(-d.Z)
	yaw := math32.Atan2(d.Y, d.X)

	return Vec3{pitch, 0, yaw}
}
