// Package camera provides an orbit camera around the water volume.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the eye off the poles so the up vector stays valid.
const maxPitch = 89 * math.Pi / 180

// Orbit circles a target point at a distance.
// Yaw 0 looks down -Z from the +Z side; positive pitch raises the eye.
type Orbit struct {
	Target   mgl32.Vec3
	Yaw      float32 // radians, wrapped to [0, 2π)
	Pitch    float32 // radians, clamped to ±maxPitch
	Distance float32

	// Distance constraints
	MinDistance, MaxDistance float32

	home pose
}

// pose is the state restored by Reset.
type pose struct {
	Target     mgl32.Vec3
	Yaw, Pitch float32
	Distance   float32
}

// New creates a camera looking at target from distance, raised slightly.
func New(target mgl32.Vec3, distance float32) *Orbit {
	o := &Orbit{
		Target:      target,
		Yaw:         math.Pi / 4,
		Pitch:       math.Pi / 6,
		Distance:    distance,
		MinDistance: distance / 8,
		MaxDistance: distance * 4,
	}
	o.home = pose{Target: o.Target, Yaw: o.Yaw, Pitch: o.Pitch, Distance: o.Distance}
	return o
}

// ForVolume frames a w×h×l box whose minimum corner sits at the origin.
func ForVolume(w, h, l, cellSize float32) *Orbit {
	size := mgl32.Vec3{w, h, l}.Mul(cellSize)
	return New(size.Mul(0.5), size.Len()*1.2)
}

// Eye returns the camera position in world coordinates.
func (o *Orbit) Eye() mgl32.Vec3 {
	sy, cy := sincos(o.Yaw)
	sp, cp := sincos(o.Pitch)
	dir := mgl32.Vec3{cp * sy, sp, cp * cy}
	return o.Target.Add(dir.Mul(o.Distance))
}

// Up returns the world up vector.
func (o *Orbit) Up() mgl32.Vec3 { return mgl32.Vec3{0, 1, 0} }

// View returns the world-to-camera matrix.
func (o *Orbit) View() mgl32.Mat4 {
	return mgl32.LookAtV(o.Eye(), o.Target, o.Up())
}

// Rotate turns the camera by the given yaw and pitch deltas in radians.
func (o *Orbit) Rotate(dYaw, dPitch float32) {
	o.Yaw = wrapAngle(o.Yaw + dYaw)
	o.Pitch = mgl32.Clamp(o.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the orbit radius, clamped to min/max.
func (o *Orbit) SetDistance(d float32) {
	o.Distance = mgl32.Clamp(d, o.MinDistance, o.MaxDistance)
}

// ZoomBy multiplies the orbit radius by factor. Factors below 1 move closer.
func (o *Orbit) ZoomBy(factor float32) {
	o.SetDistance(o.Distance * factor)
}

// Reset returns the camera to its initial pose.
func (o *Orbit) Reset() {
	o.Target = o.home.Target
	o.Yaw = o.home.Yaw
	o.Pitch = o.home.Pitch
	o.Distance = o.home.Distance
}

func sincos(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(s), float32(c)
}

// wrapAngle maps a to [0, 2π).
func wrapAngle(a float32) float32 {
	r := float32(math.Mod(float64(a), 2*math.Pi))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}
