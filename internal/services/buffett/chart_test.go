package buffett

import (
	"testing"

	"github.com/bobmcallan/borsa/internal/models"
)

func TestRenderDCFChartValidPNG(t *testing.T) {
	r := ComputeDCF(100, params(0.30, 0.38, 0.03, 0.02, 0.10, 5))
	if !r.IsOk() {
		t.Fatalf("ComputeDCF error: %v", r.Err)
	}

	pngBytes, err := RenderDCFChart("TEST", r.Value)
	if err != nil {
		t.Fatalf("RenderDCFChart error: %v", err)
	}

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if len(pngBytes) < 8 {
		t.Fatalf("PNG output too short: %d bytes", len(pngBytes))
	}
	for i, b := range pngHeader {
		if pngBytes[i] != b {
			t.Fatalf("byte %d: got 0x%02X, want 0x%02X (not a valid PNG)", i, pngBytes[i], b)
		}
	}
	if len(pngBytes) < 1000 {
		t.Errorf("PNG suspiciously small: %d bytes", len(pngBytes))
	}
}

func TestRenderDCFChartTooFewYears(t *testing.T) {
	r := ComputeDCF(100, params(0.30, 0.38, 0.03, 0.02, 0.10, 1))
	if !r.IsOk() {
		t.Fatalf("ComputeDCF error: %v", r.Err)
	}
	if _, err := RenderDCFChart("TEST", r.Value); err == nil {
		t.Fatal("expected error for a single projected year, got nil")
	}
	if _, err := RenderDCFChart("TEST", (*models.DCFResult)(nil)); err == nil {
		t.Fatal("expected error for nil result, got nil")
	}
}
