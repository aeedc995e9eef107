package game

import (
	"testing"

	"github.com/iburimskiy/chronoscope/internal/chronicle"
	"github.com/iburimskiy/chronoscope/internal/config"
	"github.com/iburimskiy/chronoscope/internal/modulation"
)

func TestFaders_LevelsAndClamp(t *testing.T) {
	f := NewFaders(config.DefaultFaders())
	if v, ok := f.Level(modulation.Delay); !ok || v != 0.3 {
		t.Fatalf("Level(delay) = %v, %v; want 0.3, true", v, ok)
	}
	if v, _ := f.Level(modulation.Drone); v != 0 {
		t.Fatalf("Level(drone) = %v, want 0", v)
	}

	f.Set(modulation.Reverb, 1.7)
	if v, _ := f.Level(modulation.Reverb); v != 1 {
		t.Fatalf("Level(reverb) = %v, want clamped 1", v)
	}
	f.Nudge(modulation.Chorus, -5)
	if v, _ := f.Level(modulation.Chorus); v != 0 {
		t.Fatalf("Level(chorus) = %v, want clamped 0", v)
	}

	if _, ok := f.Level(modulation.Param(9)); ok {
		t.Fatal("Level of unknown param must report a missing control")
	}
}

func TestField_MoveWrapsAndMapsFaders(t *testing.T) {
	if got := fieldDay.move(-1); got != fieldDrone {
		t.Fatalf("move(-1) from day = %v, want drone", got)
	}
	if got := fieldDrone.move(1); got != fieldDay {
		t.Fatalf("move(1) from drone = %v, want day", got)
	}
	if _, ok := fieldYear.fader(); ok {
		t.Fatal("year must not map to a fader")
	}
	for i, p := range modulation.Params {
		got, ok := (fieldDelay + field(i)).fader()
		if !ok || got != p {
			t.Fatalf("fader of field %d = %v, %v; want %v", i, got, ok, p)
		}
		if (fieldDelay + field(i)).String() != p.String() {
			t.Fatalf("field name %q, want %q", (fieldDelay + field(i)).String(), p.String())
		}
	}
}

func TestAdjustDate(t *testing.T) {
	cases := []struct {
		name  string
		in    chronicle.Date
		f     field
		delta int
		want  chronicle.Date
	}{
		{"day wraps forward", chronicle.Date{Year: 1990, Month: 1, Day: 31}, fieldDay, 1, chronicle.Date{Year: 1990, Month: 1, Day: 1}},
		{"day wraps backward", chronicle.Date{Year: 1990, Month: 2, Day: 1}, fieldDay, -1, chronicle.Date{Year: 1990, Month: 2, Day: 28}},
		{"month wraps", chronicle.Date{Year: 1990, Month: 12, Day: 5}, fieldMonth, 1, chronicle.Date{Year: 1990, Month: 1, Day: 5}},
		{"month clamps day", chronicle.Date{Year: 1990, Month: 1, Day: 31}, fieldMonth, 1, chronicle.Date{Year: 1990, Month: 2, Day: 28}},
		{"leap day to common year", chronicle.Date{Year: 2000, Month: 2, Day: 29}, fieldYear, 1, chronicle.Date{Year: 2001, Month: 2, Day: 28}},
		{"year passes random range", chronicle.Date{Year: 2025, Month: 3, Day: 10}, fieldYear, 1, chronicle.Date{Year: 2026, Month: 3, Day: 10}},
		{"year stops at max", chronicle.Date{Year: 2026, Month: 3, Day: 10}, fieldYear, 1, chronicle.Date{Year: 2026, Month: 3, Day: 10}},
		{"year stops at min", chronicle.Date{Year: 1900, Month: 3, Day: 10}, fieldYear, -1, chronicle.Date{Year: 1900, Month: 3, Day: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adjustDate(tc.in, tc.f, tc.delta); got != tc.want {
				t.Fatalf("adjustDate = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLayout_RegionsInsideWindow(t *testing.T) {
	for _, size := range [][2]int{{config.WindowWidth, config.WindowHeight}, {800, 600}, {1920, 1080}} {
		l := computeLayout(size[0], size[1])
		for i, r := range l.faders {
			if r.Min.X < 0 || r.Max.X > size[0] || r.Min.Y < 0 || r.Max.Y > size[1] {
				t.Fatalf("%v: fader %d %v outside window", size, i, r)
			}
			if i > 0 && r.Min.Y < l.faders[i-1].Max.Y {
				t.Fatalf("%v: fader %d overlaps the previous one", size, i)
			}
		}
		if l.planet.Dx() < minPanel || l.planet.Dy() < minPanel {
			t.Fatalf("%v: planet panel %v too small", size, l.planet)
		}
		if l.scope.Max.Y > size[1] || l.news.Min.X < l.planet.Max.X {
			t.Fatalf("%v: scope %v or news %v misplaced", size, l.scope, l.news)
		}
	}
}

func TestLayout_FaderAt(t *testing.T) {
	l := computeLayout(config.WindowWidth, config.WindowHeight)
	r := l.faders[modulation.Reverb]
	p, v, ok := l.faderAt(r.Min.X+r.Dx()/2, r.Min.Y+1)
	if !ok || p != modulation.Reverb || v != 0.5 {
		t.Fatalf("faderAt = %v, %v, %v; want reverb, 0.5, true", p, v, ok)
	}
	if _, _, ok := l.faderAt(0, 0); ok {
		t.Fatal("faderAt(0,0) hit a fader")
	}
}

func TestSpaceLine(t *testing.T) {
	if got := spaceLine(chronicle.Space{Title: "Nebula", URL: "https://apod.test/n.jpg"}); got != "Nebula | APOD NASA" {
		t.Fatalf("spaceLine = %q", got)
	}
	for _, s := range []chronicle.Space{{Title: chronicle.SpaceUnreachable}, {Title: chronicle.SpaceUntitled}} {
		if got := spaceLine(s); got != spectralVoid {
			t.Fatalf("spaceLine(%q) = %q, want %q", s.Title, got, spectralVoid)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Глибокий Космос", 8); got != "Глибоки…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
