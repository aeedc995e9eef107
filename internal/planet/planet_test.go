package planet

import (
	"math"
	"math/rand/v2"
	"testing"
)

func testRNG() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestGenerate_PointsOnSphere(t *testing.T) {
	points := Generate(PointCount, 300, 300, testRNG())
	if len(points) != PointCount {
		t.Fatalf("len = %d, want %d", len(points), PointCount)
	}
	r := Radius(300, 300)
	for i, p := range points {
		d := p.X*p.X + p.Y*p.Y + p.Z*p.Z
		if math.Abs(d-r*r) > 1e-6 {
			t.Fatalf("point %d: |p|^2 = %v, want %v", i, d, r*r)
		}
		if p.Size < 1 || p.Size >= 3 {
			t.Fatalf("point %d: size %v outside [1,3)", i, p.Size)
		}
	}
}

func TestGenerate_FirstPointAtPole(t *testing.T) {
	if r := Radius(300, 300); math.Abs(r-105) > 1e-9 {
		t.Fatalf("Radius(300,300) = %v, want 105", r)
	}
	p := Generate(PointCount, 300, 300, testRNG())[0]
	if math.Abs(p.Z+105) > 1e-9 {
		t.Fatalf("point 0 z = %v, want -105", p.Z)
	}
}

func TestGenerate_RadiusUsesSmallerSide(t *testing.T) {
	if r := Radius(800, 400); math.Abs(r-140) > 1e-9 {
		t.Fatalf("Radius(800,400) = %v, want 140", r)
	}
}

// Consecutive spiral points stay within the mean nearest-neighbour spacing of
// a uniform sampling; a latitude/longitude grid would bunch up at the poles.
func TestGenerate_NoPoleClustering(t *testing.T) {
	const n = PointCount
	r := 105.0
	points := Generate(n, 300, 300, testRNG())

	// Mean nearest-neighbour distance for n uniform points on a sphere of
	// radius r is about sqrt(4*pi*r^2/n).
	uniform := math.Sqrt(4 * math.Pi * r * r / n)
	for i := 1; i < n; i++ {
		a, b := points[i-1], points[i]
		d := math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
		if d > uniform {
			t.Fatalf("points %d and %d are %v apart, want <= %v", i-1, i, d, uniform)
		}
	}

	// Pole caps hold their fair share of points rather than a cluster.
	var capped int
	for _, p := range points {
		if p.Z > 0.9*r {
			capped++
		}
	}
	want := float64(n) * 0.05 // cap area fraction (1-0.9)/2
	if math.Abs(float64(capped)-want) > 3 {
		t.Fatalf("north cap holds %d points, want about %v", capped, want)
	}
}

func TestProject_SortedFarToNear(t *testing.T) {
	p := New(300, 300, testRNG())
	for _, angle := range []float64{0, 0.3, 1, math.Pi, 4.2, 100} {
		p.angle = angle
		proj := p.Project()
		if len(proj) != PointCount {
			t.Fatalf("len = %d, want %d", len(proj), PointCount)
		}
		for i := 1; i < len(proj); i++ {
			if proj[i].Z < proj[i-1].Z {
				t.Fatalf("angle %v: z[%d]=%v < z[%d]=%v", angle, i, proj[i].Z, i-1, proj[i-1].Z)
			}
		}
	}
}

func TestProject_DoesNotMutatePoints(t *testing.T) {
	p := New(300, 300, testRNG())
	before := append([]Point(nil), p.Points()...)
	p.angle = 1.234
	p.Project()
	for i := range before {
		if before[i] != p.Points()[i] {
			t.Fatalf("point %d changed: %+v -> %+v", i, before[i], p.Points()[i])
		}
	}
}

func TestProject_ZeroAngleIsIdentityRotation(t *testing.T) {
	p := New(300, 300, testRNG())
	proj := p.Project()
	want := map[float64]bool{}
	for _, pt := range p.Points() {
		want[pt.Z] = true
	}
	for _, pt := range proj {
		if !want[pt.Z] {
			t.Fatalf("projected z %v not among base z values", pt.Z)
		}
		if math.Abs(pt.Scale-Perspective(pt.Z)) > 1e-12 || math.Abs(pt.Alpha-Alpha(pt.Z)) > 1e-12 {
			t.Fatalf("inconsistent projection %+v", pt)
		}
	}
}

func TestProject_ScreenPosition(t *testing.T) {
	p := &Projector{width: 200, height: 100, points: []Point{{X: 10, Y: 20, Z: 0}}}
	got := p.Project()[0]
	if got.X != 110 || got.Y != 70 || got.Scale != 1 {
		t.Fatalf("Project = %+v, want centre + (10,20) at scale 1", got)
	}

	p.angle = math.Pi / 2
	got = p.Project()[0]
	// x' = x cos - z sin = 0, z' = x sin + z cos = 10
	if math.Abs(got.Z-10) > 1e-9 || math.Abs(got.X-100) > 1e-9 {
		t.Fatalf("rotated Project = %+v, want x=100 z=10", got)
	}
	if math.Abs(got.Y-(50+20*500.0/510.0)) > 1e-9 {
		t.Fatalf("rotated y = %v, want perspective-scaled original y", got.Y)
	}
}

func TestPerspective_Decreasing(t *testing.T) {
	prev := math.Inf(1)
	for z := -FocalDistance + 1; z <= 1000; z += 7 {
		s := Perspective(z)
		if s >= prev {
			t.Fatalf("Perspective(%v) = %v, not below %v", z, s, prev)
		}
		prev = s
	}
	if Perspective(0) != 1 {
		t.Fatalf("Perspective(0) = %v, want 1", Perspective(0))
	}
}

func TestAlpha_MonotoneAndClamped(t *testing.T) {
	if Alpha(-300) != 0 || Alpha(-1000) != 0 {
		t.Fatal("alpha must be 0 at and below z = -300")
	}
	if Alpha(300) != 1 || Alpha(1000) != 1 {
		t.Fatal("alpha must be 1 at and above z = 300")
	}
	if Alpha(0) != 0.5 {
		t.Fatalf("Alpha(0) = %v, want 0.5", Alpha(0))
	}
	prev := -1.0
	for z := -400.0; z <= 400; z += 5 {
		a := Alpha(z)
		if a < prev {
			t.Fatalf("Alpha(%v) = %v decreased from %v", z, a, prev)
		}
		prev = a
	}
}

func TestResize_RegeneratesAndKeepsAngle(t *testing.T) {
	p := New(300, 300, testRNG())
	for range 10 {
		p.Step()
	}
	angle := p.Angle()

	p.Resize(640, 480)
	if w, h := p.Size(); w != 640 || h != 480 {
		t.Fatalf("Size = %dx%d, want 640x480", w, h)
	}
	if len(p.Points()) != PointCount {
		t.Fatalf("len = %d, want %d", len(p.Points()), PointCount)
	}
	if p.Angle() != angle {
		t.Fatalf("angle = %v, want %v", p.Angle(), angle)
	}
	if z := p.Points()[0].Z; math.Abs(z+Radius(640, 480)) > 1e-9 {
		t.Fatalf("point 0 z = %v, want -%v", z, Radius(640, 480))
	}
}

func TestResize_ZeroFallsBack(t *testing.T) {
	p := New(0, 0, testRNG())
	if w, h := p.Size(); w != 300 || h != 300 {
		t.Fatalf("Size = %dx%d, want 300x300", w, h)
	}
}

func TestStep_AccumulatesSpeed(t *testing.T) {
	p := New(300, 300, testRNG())
	if p.Speed() != DefaultSpeed || p.Hue() != DefaultHue {
		t.Fatalf("defaults: speed=%v hue=%v", p.Speed(), p.Hue())
	}
	for range 4 {
		p.Step()
	}
	if math.Abs(p.Angle()-4*DefaultSpeed) > 1e-12 {
		t.Fatalf("angle = %v, want %v", p.Angle(), 4*DefaultSpeed)
	}
}

func TestSetYear(t *testing.T) {
	p := New(300, 300, testRNG())
	p.SetYear(1995)
	if math.Abs(p.Hue()-112.5) > 1e-9 {
		t.Fatalf("hue = %v, want 112.5", p.Hue())
	}
	if math.Abs(p.Speed()-0.0075) > 1e-12 {
		t.Fatalf("speed = %v, want 0.0075", p.Speed())
	}
}

func TestDotColor_Alpha(t *testing.T) {
	c := DotColor(200, 0)
	if c.A != 0 || c.R != 0 {
		t.Fatalf("DotColor alpha 0 = %+v, want transparent", c)
	}
	c = DotColor(200, 1)
	if c.A != 255 {
		t.Fatalf("DotColor alpha 1 = %+v, want opaque", c)
	}
}
