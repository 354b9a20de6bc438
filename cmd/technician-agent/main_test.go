package main

import (
	"context"
	"testing"
)

func TestDriftSamplerMoves(t *testing.T) {
	s := newDriftSampler(-8.0476, -34.877)

	first, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	second, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}

	if second.Latitude <= first.Latitude || second.Longitude <= first.Longitude {
		t.Fatalf("expected drift between samples: %+v -> %+v", first, second)
	}
	if first.Accuracy != 8 {
		t.Fatalf("unexpected accuracy %v", first.Accuracy)
	}
}

func TestBuildSampler(t *testing.T) {
	for _, kind := range []string{"drift", "fixed", "ip"} {
		if _, err := buildSampler(kind, -8.0476, -34.877); err != nil {
			t.Fatalf("buildSampler(%s): %v", kind, err)
		}
	}
	if _, err := buildSampler("gps2000", 0, 0); err == nil {
		t.Fatalf("expected error for unknown source kind")
	}
}

func TestBuildSamplerFixedReading(t *testing.T) {
	s, err := buildSampler("fixed", -8.05, -34.9)
	if err != nil {
		t.Fatalf("buildSampler: %v", err)
	}
	r, err := s.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if r.Latitude != -8.05 || r.Longitude != -34.9 {
		t.Fatalf("unexpected reading %+v", r)
	}
}
