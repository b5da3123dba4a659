package domain

import (
	"errors"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Coordinate
		wantErr bool
	}{
		{"north west", "51.5072° N, 0.1276° W", Coordinate{51.5072, -0.1276}, false},
		{"south east", "18.7669° S, 46.8691° E", Coordinate{-18.7669, 46.8691}, false},
		{"lower case, no degree sign", "22.9068 s, 43.1729 w", Coordinate{-22.9068, -43.1729}, false},
		{"signed decimal", "-22.9068,-43.1729", Coordinate{-22.9068, -43.1729}, false},
		{"swapped hemispheres", "0.1276° W, 51.5072° N", Coordinate{}, true},
		{"signed with hemisphere", "-1° N, 2° E", Coordinate{}, true},
		{"latitude out of range", "91° N, 0° E", Coordinate{}, true},
		{"one component", "51.5072", Coordinate{}, true},
		{"garbage", "north, east", Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCoordinateRendering(t *testing.T) {
	c := MustParseCoordinate("22.9068° S, 43.1729° W")

	if got, want := c.String(), "22.9068° S, 43.1729° W"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := c.Query(), "-22.9068,-43.1729"; got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
	if got, want := c.GeoURI(), "geo:0,0?q=-22.9068,-43.1729"; got != want {
		t.Errorf("GeoURI() = %q, want %q", got, want)
	}
}

func TestStageActive(t *testing.T) {
	for _, s := range []Stage{StageCreated, StageResumed, StagePaused} {
		if !s.Active() {
			t.Errorf("%s should be active", s)
		}
	}
	for _, s := range []Stage{StageIdle, StageDestroyed} {
		if s.Active() {
			t.Errorf("%s should not be active", s)
		}
	}
}
