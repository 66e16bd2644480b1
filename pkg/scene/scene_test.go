package scene

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestFibonacciSphereOnRadiusAndDistinct(t *testing.T) {
	points := FibonacciSphere(DefaultParticleCount, ParticleRadius)
	if len(points) != DefaultParticleCount {
		t.Fatalf("points = %d", len(points))
	}
	seen := make(map[[3]int64]bool, len(points))
	for i, p := range points {
		r := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
		if math.Abs(r-ParticleRadius) > 1e-9 {
			t.Fatalf("point %d radius = %v", i, r)
		}
		key := [3]int64{int64(p[0] * 1e9), int64(p[1] * 1e9), int64(p[2] * 1e9)}
		if seen[key] {
			t.Fatalf("point %d duplicates an earlier point", i)
		}
		seen[key] = true
	}
}

func TestFibonacciSphereCoversBothPoles(t *testing.T) {
	points := FibonacciSphere(100, 1)
	if points[0][2] <= 0.9 || points[99][2] >= -0.9 {
		t.Fatalf("first z = %v, last z = %v", points[0][2], points[99][2])
	}
	if FibonacciSphere(0, 1) != nil {
		t.Fatal("zero points should return nil")
	}
}

func TestBuildIsDeterministicForSeed(t *testing.T) {
	a := New(Config{Seed: 42})
	b := New(Config{Seed: 42})
	if a.Seed != 42 || a.Particles.Accents != b.Particles.Accents {
		t.Fatalf("seeded scenes differ: %d vs %d accents", a.Particles.Accents, b.Particles.Accents)
	}
	for i := range a.Particles.Colors {
		if a.Particles.Colors[i] != b.Particles.Colors[i] {
			t.Fatalf("colour %d differs", i)
		}
	}
}

func TestAccentShareRoughlyThirty(t *testing.T) {
	s := New(Config{ParticleCount: 20000, Seed: 7})
	share := float64(s.Particles.Accents) / float64(s.Particles.Count)
	if share < 0.27 || share > 0.33 {
		t.Fatalf("accent share = %.3f", share)
	}

	accent, _ := ParseHex(AccentColor)
	dim, _ := ParseHex(DimColor)
	accents := 0
	for i := 0; i < len(s.Particles.Colors); i += 3 {
		c := RGB{s.Particles.Colors[i], s.Particles.Colors[i+1], s.Particles.Colors[i+2]}
		switch c {
		case accent:
			accents++
		case dim:
		default:
			t.Fatalf("particle %d has colour %v", i/3, c)
		}
	}
	if accents != s.Particles.Accents {
		t.Fatalf("counted %d accents, scene says %d", accents, s.Particles.Accents)
	}
}

func TestBuildLayout(t *testing.T) {
	s := New(Config{Seed: 1})
	if s.Particles.Count != DefaultParticleCount || len(s.Particles.Positions) != DefaultParticleCount*3 {
		t.Fatalf("particles = %d / %d floats", s.Particles.Count, len(s.Particles.Positions))
	}
	if len(s.Rings) != 2 {
		t.Fatalf("rings = %d", len(s.Rings))
	}
	for i, r := range s.Rings {
		if len(r.Positions) != RingPointCount*3 {
			t.Fatalf("ring %d floats = %d", i, len(r.Positions))
		}
		for j := 1; j < len(r.Positions); j += 3 {
			if r.Positions[j] != 0 {
				t.Fatalf("ring %d point %d is off the XZ plane", i, j/3)
			}
		}
	}
	if s.Rings[0].Rotation != (Vec3{math.Pi * 0.3, 0, math.Pi * 0.1}) {
		t.Fatalf("ring 0 tilt = %v", s.Rings[0].Rotation)
	}
	if s.Globe.Radius != 1.48 || !s.Globe.Material.Wireframe || s.Glow.Radius != 1.6 {
		t.Fatal("globe or glow geometry wrong")
	}
	if s.Orbit.EnableZoom || s.Orbit.EnablePan || !s.Orbit.AutoRotate {
		t.Fatal("orbit controls should auto-rotate without zoom or pan")
	}
	if s.Camera.Position[2] != 4.5 || s.Camera.FOV != 45 {
		t.Fatalf("camera = %+v", s.Camera)
	}
}

func TestRotation(t *testing.T) {
	if Rotation(0) != 0 {
		t.Fatal("rotation at zero should be zero")
	}
	if got := Rotation(10 * time.Second); math.Abs(got-0.8) > 1e-12 {
		t.Fatalf("Rotation(10s) = %v", got)
	}
}

func TestZeroSeedIsReplaced(t *testing.T) {
	_, seed := NewRand(0)
	if seed == 0 {
		t.Fatal("seed 0 should be replaced")
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#00ff9d")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c[0] != 0 || c[1] != 1 || math.Abs(float64(c[2])-157.0/255) > 1e-6 {
		t.Fatalf("colour = %v", c)
	}
	if _, err := ParseHex("green"); err == nil {
		t.Fatal("expected error for non-hex colour")
	}
}

func TestSceneJSONShape(t *testing.T) {
	raw, err := json.Marshal(New(Config{ParticleCount: 10, Seed: 3}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"globe", "particles", "rings", "glow", "camera", "orbit", "rotationRate"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("scene JSON missing %q", key)
		}
	}
}
