package georef

import (
	"math"
	"testing"
)

func TestGeographicToECEFEquatorPrimeMeridian(t *testing.T) {
	got := GeographicToECEF(0, 0, 0)
	want := [3]float64{wgs84A, 0, 0}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-3 {
			t.Errorf("GeographicToECEF(0,0,0)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGeographicToECEFNorthPole(t *testing.T) {
	got := GeographicToECEF(0, 90, 0)
	// at the pole, x and y collapse to ~0 and z is the polar radius
	if math.Abs(got[0]) > 1e-6 || math.Abs(got[1]) > 1e-6 {
		t.Errorf("GeographicToECEF(0,90,0) x/y should be ~0, got %v", got)
	}
	if got[2] <= wgs84A*(1-wgs84F)*0.99 {
		t.Errorf("GeographicToECEF(0,90,0) z too small: %v", got[2])
	}
}

func TestENUToECEFMatrixIsAffineWithUnitTranslationRow(t *testing.T) {
	m := ENUToECEFMatrix(10, 20, 0)
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		t.Errorf("ENUToECEFMatrix does not have an affine bottom row: %v", m)
	}
}

func TestOffsetElevationCorrectorAddsOffset(t *testing.T) {
	c := NewOffsetElevationCorrector(5)
	if got := c.CorrectElevation(1, 2, 10); got != 15 {
		t.Errorf("CorrectElevation() = %v, want 15", got)
	}
}

func TestNoopElevationCorrectorIsIdentity(t *testing.T) {
	c := NoopElevationCorrector{}
	if got := c.CorrectElevation(1, 2, 10); got != 10 {
		t.Errorf("CorrectElevation() = %v, want 10 (unchanged)", got)
	}
}

func TestPipelineToLocalENUCentersOnCentroid(t *testing.T) {
	p, err := NewPipeline(4326, nil)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	defer p.Close()

	// a small quad of WGS84 lon/lat/h points; their centroid should map
	// close to the local-frame origin once reprojected.
	positions := [][3]float64{
		{12.490, 41.890, 0},
		{12.491, 41.890, 0},
		{12.491, 41.891, 0},
		{12.490, 41.891, 0},
	}
	local, transform, err := p.ToLocalENU(positions)
	if err != nil {
		t.Fatalf("ToLocalENU() error = %v", err)
	}
	if len(local) != len(positions) {
		t.Fatalf("ToLocalENU() returned %d positions, want %d", len(local), len(positions))
	}
	if transform[15] != 1 {
		t.Errorf("transform bottom-right element = %v, want 1 (affine)", transform[15])
	}

	var meanX, meanY, meanZ float64
	for _, p := range local {
		meanX += p[0]
		meanY += p[1]
		meanZ += p[2]
	}
	n := float64(len(local))
	meanX, meanY, meanZ = meanX/n, meanY/n, meanZ/n
	if math.Abs(meanX) > 1 || math.Abs(meanY) > 1 || math.Abs(meanZ) > 1 {
		t.Errorf("local-frame centroid = (%v, %v, %v), want near origin", meanX, meanY, meanZ)
	}
}
