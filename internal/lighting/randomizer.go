// Package lighting synthesizes randomized light rigs for domain
// randomization: one dominant key light plus a handful of secondary lights,
// all aimed at the scene center.
package lighting

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/artefactlab/synthgen/internal/config"
	"github.com/artefactlab/synthgen/internal/engine"
	"github.com/artefactlab/synthgen/pkg/geom"
)

// Key light parameters: a consistent bright area light from 35-55 degrees
// elevation gives usable shadows regardless of what the secondary draws do.
const (
	keyElevationMinDeg = 35
	keyElevationMaxDeg = 55
	keyDistanceMin     = 1.0
	keyDistanceMax     = 1.8
	keyKelvinMin       = 4500
	keyKelvinMax       = 5500
)

// Randomizer owns the scene's transient lights.
type Randomizer struct {
	eng engine.Engine
	cfg config.LightingConfig
	rng *rand.Rand

	lights []engine.ObjectID
}

// New creates a lighting randomizer.
func New(eng engine.Engine, cfg config.LightingConfig, rng *rand.Rand) *Randomizer {
	return &Randomizer{eng: eng, cfg: cfg, rng: rng}
}

// Clear destroys all lights created for the previous scene.
func (r *Randomizer) Clear() {
	for _, id := range r.lights {
		r.eng.Delete(id)
	}
	r.lights = nil
}

// Count returns the number of live lights.
func (r *Randomizer) Count() int {
	return len(r.lights)
}

// Generate clears the previous rig and creates a new one around center:
// always one key light, then a random number of secondary fill lights.
func (r *Randomizer) Generate(center geom.Vec3) error {
	r.Clear()

	if err := r.createKeyLight(center); err != nil {
		return err
	}

	n := r.cfg.NumLights.Min + r.rng.Intn(r.cfg.NumLights.Max-r.cfg.NumLights.Min+1)
	for i := 0; i < n; i++ {
		if err := r.createSecondaryLight(center); err != nil {
			return err
		}
	}
	return nil
}

func (r *Randomizer) createKeyLight(center geom.Vec3) error {
	azimuth := float32(r.rng.Float64()) * 2 * math32.Pi
	elevation := radians(r.uniform(keyElevationMinDeg, keyElevationMaxDeg))
	distance := r.uniform(keyDistanceMin, keyDistanceMax)

	pos := center.Add(geom.Vec3{
		X: distance * math32.Cos(azimuth) * math32.Cos(elevation),
		Y: distance * math32.Sin(azimuth) * math32.Cos(elevation),
		Z: distance * math32.Sin(elevation),
	})

	// Strong intensity from the top of the configured range, warm/neutral color.
	energy := r.uniform(float32(r.cfg.IntensityRange.Max)*0.8, float32(r.cfg.IntensityRange.Max))
	kelvin := r.uniform(keyKelvinMin, keyKelvinMax)

	return r.create(engine.LightSpec{
		Type:     engine.LightArea,
		Location: pos,
		Rotation: geom.DirectionToEuler(center.Sub(pos)),
		Energy:   energy,
		Color:    kelvinColor(kelvin),
	})
}

func (r *Randomizer) createSecondaryLight(center geom.Vec3) error {
	lightType := r.pickType()

	var pos geom.Vec3
	if lightType == engine.LightSun {
		// Directional light: position is visually irrelevant, only the
		// direction towards the scene matters.
		azimuth := float32(r.rng.Float64()) * 2 * math32.Pi
		elevation := r.uniform(math32.Pi/6, math32.Pi/3)
		const distance = 5
		pos = center.Add(geom.Vec3{
			X: distance * math32.Cos(azimuth) * math32.Sin(elevation),
			Y: distance * math32.Sin(azimuth) * math32.Sin(elevation),
			Z: distance * math32.Cos(elevation),
		})
	} else {
		azimuth := float32(r.rng.Float64()) * 2 * math32.Pi
		distance := r.uniform(0.5, 1.5)
		height := r.uniform(0.5, 1.5)
		pos = center.Add(geom.Vec3{
			X: distance * math32.Cos(azimuth),
			Y: distance * math32.Sin(azimuth),
			Z: height,
		})
	}

	// Fill lights stay dimmer than the key light.
	energy := r.uniform(float32(r.cfg.IntensityRange.Min)*0.5, float32(r.cfg.IntensityRange.Max)*0.6)
	kelvin := r.uniform(float32(r.cfg.ColorTempRange.Min), float32(r.cfg.ColorTempRange.Max))

	return r.create(engine.LightSpec{
		Type:     lightType,
		Location: pos,
		Rotation: geom.DirectionToEuler(center.Sub(pos)),
		Energy:   energy,
		Color:    kelvinColor(kelvin),
	})
}

// pickType draws a secondary light type with weights
// point 0.4, area 0.5, directional 0.1.
func (r *Randomizer) pickType() engine.LightType {
	v := r.rng.Float64()
	switch {
	case v < 0.4:
		return engine.LightPoint
	case v < 0.9:
		return engine.LightArea
	default:
		return engine.LightSun
	}
}

func (r *Randomizer) create(spec engine.LightSpec) error {
	id, err := r.eng.CreateLight(spec)
	if err != nil {
		return err
	}
	r.lights = append(r.lights, id)
	return nil
}

func (r *Randomizer) uniform(min, max float32) float32 {
	return min + float32(r.rng.Float64())*(max-min)
}

func kelvinColor(kelvin float32) [3]float32 {
	cr, cg, cb := geom.KelvinToRGB(kelvin)
	return [3]float32{cr, cg, cb}
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
