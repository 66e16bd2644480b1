// Package scene builds the decorative rotating-earth scene: a wireframe globe,
// a Fibonacci-distributed particle shell, two tilted orbital rings and a faint
// glow. The output is plain data; the browser client only draws it.
package scene

import (
	"math"
	"math/rand/v2"
	"time"
)

const (
	DefaultParticleCount = 2000
	ParticleRadius       = 1.5
	RingPointCount       = 200
	RingRadius           = 2.2

	AccentColor = "#00ff9d"
	DimColor    = "#1a3a2a"

	// AccentThreshold is the draw above which a particle takes the accent
	// colour, giving roughly 30% accent particles.
	AccentThreshold = 0.7

	// RotationRate is the globe and particle spin in radians per second.
	RotationRate = 0.08
)

// Vec3 is an x, y, z triple.
type Vec3 [3]float64

// Material describes how a mesh or point cloud is shaded.
type Material struct {
	Color       string  `json:"color,omitempty"`
	Opacity     float64 `json:"opacity"`
	Transparent bool    `json:"transparent"`
	Wireframe   bool    `json:"wireframe,omitempty"`
	Size        float64 `json:"size,omitempty"`
	VertexColor bool    `json:"vertexColors,omitempty"`
}

// Sphere is a UV sphere mesh.
type Sphere struct {
	Radius         float64  `json:"radius"`
	WidthSegments  int      `json:"widthSegments"`
	HeightSegments int      `json:"heightSegments"`
	Material       Material `json:"material"`
}

// Particles is a point cloud with per-point colour, stored flat as a
// buffer attribute expects it.
type Particles struct {
	Count     int       `json:"count"`
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
	Accents   int       `json:"accents"`
	Material  Material  `json:"material"`
}

// Ring is a circle of points in the XZ plane, tilted by Rotation (Euler XYZ).
type Ring struct {
	Count     int       `json:"count"`
	Radius    float64   `json:"radius"`
	Rotation  Vec3      `json:"rotation"`
	Positions []float32 `json:"positions"`
	Material  Material  `json:"material"`
}

// Camera is a perspective camera.
type Camera struct {
	Position Vec3    `json:"position"`
	FOV      float64 `json:"fov"`
}

// Orbit configures the user orbit controls.
type Orbit struct {
	EnableZoom      bool    `json:"enableZoom"`
	EnablePan       bool    `json:"enablePan"`
	AutoRotate      bool    `json:"autoRotate"`
	AutoRotateSpeed float64 `json:"autoRotateSpeed"`
	MinPolarAngle   float64 `json:"minPolarAngle"`
	MaxPolarAngle   float64 `json:"maxPolarAngle"`
}

// Scene is everything the client needs to draw.
type Scene struct {
	Seed         uint64    `json:"seed"`
	Globe        Sphere    `json:"globe"`
	Particles    Particles `json:"particles"`
	Rings        []Ring    `json:"rings"`
	Glow         Sphere    `json:"glow"`
	Camera       Camera    `json:"camera"`
	Orbit        Orbit     `json:"orbit"`
	AmbientLight float64   `json:"ambientLight"`
	RotationRate float64   `json:"rotationRate"`
}

// Config tunes Build.
type Config struct {
	ParticleCount int
	Seed          uint64
}

// NewRand returns a PCG source for seed. Seed 0 draws a fresh seed from the
// clock, so each page load differs; the chosen seed is returned.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		if seed == 0 {
			seed = 1
		}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// FibonacciSphere places n points evenly over a sphere of the given radius.
func FibonacciSphere(n int, radius float64) []Vec3 {
	if n <= 0 {
		return nil
	}
	golden := math.Pi * (1 + math.Sqrt(5))
	points := make([]Vec3, n)
	for i := range points {
		k := float64(i) + 0.5
		phi := math.Acos(1 - 2*k/float64(n))
		theta := golden * k
		points[i] = Vec3{
			radius * math.Sin(phi) * math.Cos(theta),
			radius * math.Sin(phi) * math.Sin(theta),
			radius * math.Cos(phi),
		}
	}
	return points
}

// RingPoints places n points evenly on a circle of the given radius in the
// XZ plane.
func RingPoints(n int, radius float64) []Vec3 {
	points := make([]Vec3, n)
	for i := range points {
		angle := float64(i) / float64(n) * 2 * math.Pi
		points[i] = Vec3{radius * math.Cos(angle), 0, radius * math.Sin(angle)}
	}
	return points
}

// Rotation returns the Y rotation of the globe after elapsed time.
func Rotation(elapsed time.Duration) float64 {
	return RotationRate * elapsed.Seconds()
}

// Build assembles a scene. Colours are drawn from rng, one draw per particle.
func Build(cfg Config, rng *rand.Rand, seed uint64) Scene {
	n := cfg.ParticleCount
	if n <= 0 {
		n = DefaultParticleCount
	}

	accent, _ := ParseHex(AccentColor)
	dim, _ := ParseHex(DimColor)

	points := FibonacciSphere(n, ParticleRadius)
	particles := Particles{
		Count:     n,
		Positions: flatten(points),
		Colors:    make([]float32, 0, n*3),
		Material:  Material{Size: 0.02, VertexColor: true, Transparent: true, Opacity: 0.8},
	}
	for range points {
		c := dim
		if rng.Float64() > AccentThreshold {
			c = accent
			particles.Accents++
		}
		particles.Colors = append(particles.Colors, c[0], c[1], c[2])
	}

	ring := flatten(RingPoints(RingPointCount, RingRadius))
	return Scene{
		Seed: seed,
		Globe: Sphere{
			Radius: 1.48, WidthSegments: 32, HeightSegments: 32,
			Material: Material{Color: "#0a1f14", Opacity: 0.4, Transparent: true, Wireframe: true},
		},
		Particles: particles,
		Rings: []Ring{
			{
				Count: RingPointCount, Radius: RingRadius,
				Rotation:  Vec3{math.Pi * 0.3, 0, math.Pi * 0.1},
				Positions: ring,
				Material:  Material{Color: AccentColor, Size: 0.015, Opacity: 0.3, Transparent: true},
			},
			{
				Count: RingPointCount, Radius: RingRadius,
				Rotation:  Vec3{math.Pi * 0.6, math.Pi * 0.2, 0},
				Positions: ring,
				Material:  Material{Color: AccentColor, Size: 0.012, Opacity: 0.15, Transparent: true},
			},
		},
		Glow: Sphere{
			Radius: 1.6, WidthSegments: 32, HeightSegments: 32,
			Material: Material{Color: AccentColor, Opacity: 0.03, Transparent: true},
		},
		Camera: Camera{Position: Vec3{0, 0, 4.5}, FOV: 45},
		Orbit: Orbit{
			AutoRotate:      true,
			AutoRotateSpeed: 0.3,
			MinPolarAngle:   math.Pi * 0.25,
			MaxPolarAngle:   math.Pi * 0.75,
		},
		AmbientLight: 0.5,
		RotationRate: RotationRate,
	}
}

// New builds a scene from cfg, seeding from cfg.Seed.
func New(cfg Config) Scene {
	rng, seed := NewRand(cfg.Seed)
	return Build(cfg, rng, seed)
}

func flatten(points []Vec3) []float32 {
	out := make([]float32, 0, len(points)*3)
	for _, p := range points {
		out = append(out, float32(p[0]), float32(p[1]), float32(p[2]))
	}
	return out
}
