package analysis

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

func writeUniformPNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	writeImage(t, path, img)
}

func writeNoisyPNG(t *testing.T, path string) {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	writeImage(t, path, img)
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

func TestAnalyze_UniformImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.png")
	writeUniformPNG(t, path, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	report, err := NewAnalyzer(nil).Analyze(path)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.Properties.Width != 100 || report.Properties.Height != 100 {
		t.Errorf("dimensions: got %dx%d", report.Properties.Width, report.Properties.Height)
	}
	if report.Capacity.TotalBits != 30000 {
		t.Errorf("total bits: got %d", report.Capacity.TotalBits)
	}
	if report.Capacity.MaxCapacityBytes != 3746 {
		t.Errorf("max capacity: got %d", report.Capacity.MaxCapacityBytes)
	}
	if report.Capacity.PracticalBytes != 3746*9/10 {
		t.Errorf("practical capacity: got %d", report.Capacity.PracticalBytes)
	}

	// A single-value image has no spread at all.
	if report.Statistics.Mean != 128 || report.Statistics.StdDev != 0 {
		t.Errorf("statistics: mean=%f stddev=%f", report.Statistics.Mean, report.Statistics.StdDev)
	}
	if report.Statistics.Min != 128 || report.Statistics.Max != 128 || report.Statistics.Median != 128 {
		t.Errorf("range: min=%d max=%d median=%f",
			report.Statistics.Min, report.Statistics.Max, report.Statistics.Median)
	}
	if report.Statistics.Histogram.BinsUsed != 1 || report.Statistics.Histogram.Entropy != 0 {
		t.Errorf("histogram: bins=%d entropy=%f",
			report.Statistics.Histogram.BinsUsed, report.Statistics.Histogram.Entropy)
	}
	if report.Statistics.Histogram.PeakValue != 128 {
		t.Errorf("peak value: got %d", report.Statistics.Histogram.PeakValue)
	}

	if report.Suitability.LSBVariance != 0 {
		t.Errorf("LSB variance of a uniform image: got %f", report.Suitability.LSBVariance)
	}
	if report.Suitability.ColorDiversity != 0 {
		t.Errorf("color diversity of a uniform image: got %f", report.Suitability.ColorDiversity)
	}
	if report.Suitability.Score > 20 {
		t.Errorf("a flat image should score poorly, got %f", report.Suitability.Score)
	}
}

func TestAnalyze_NoisyBeatsUniform(t *testing.T) {
	dir := t.TempDir()
	flat := filepath.Join(dir, "flat.png")
	noisy := filepath.Join(dir, "noisy.png")
	writeUniformPNG(t, flat, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	writeNoisyPNG(t, noisy)

	analyzer := NewAnalyzer(nil)
	flatReport, err := analyzer.Analyze(flat)
	if err != nil {
		t.Fatalf("Analyze(flat) failed: %v", err)
	}
	noisyReport, err := analyzer.Analyze(noisy)
	if err != nil {
		t.Fatalf("Analyze(noisy) failed: %v", err)
	}

	if noisyReport.Suitability.Score <= flatReport.Suitability.Score {
		t.Errorf("noisy image should outscore a flat one: %f vs %f",
			noisyReport.Suitability.Score, flatReport.Suitability.Score)
	}
	if noisyReport.Statistics.Histogram.Entropy <= flatReport.Statistics.Histogram.Entropy {
		t.Errorf("noisy image should have higher entropy: %f vs %f",
			noisyReport.Statistics.Histogram.Entropy, flatReport.Statistics.Histogram.Entropy)
	}

	// Random LSBs sit near p=0.5, the variance maximum of 0.25.
	if noisyReport.Suitability.LSBVariance < 0.2 {
		t.Errorf("noisy LSB variance: got %f", noisyReport.Suitability.LSBVariance)
	}
}

func TestAnalyze_UnreadablePath(t *testing.T) {
	if _, err := NewAnalyzer(nil).Analyze(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("Analyze should fail for a missing file")
	}
}

func TestCompare_Identical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	writeNoisyPNG(t, path)

	comparison, err := NewAnalyzer(nil).Compare(path, path)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if !math.IsInf(comparison.PSNR, 1) {
		t.Errorf("PSNR of identical images: got %f, want +Inf", comparison.PSNR)
	}
	if comparison.MSE != 0 || comparison.LSBChanges != 0 || comparison.MaxDifference != 0 {
		t.Errorf("identical images reported differences: %+v", comparison)
	}
	if comparison.TotalSamples != 30000 {
		t.Errorf("total samples: got %d", comparison.TotalSamples)
	}
	if comparison.QualityImpact != "No detectable changes" {
		t.Errorf("quality impact: got %q", comparison.QualityImpact)
	}
}

func TestCompare_AfterEncode(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.png")
	encoded := filepath.Join(dir, "encoded.png")
	writeNoisyPNG(t, original)

	message := []byte("impact measurement")
	if err := stego.NewEncoder(nil).Encode(original, message, encoded, stego.EncodeOptions{}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	comparison, err := NewAnalyzer(nil).Compare(original, encoded)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if comparison.MaxDifference > 1 {
		t.Errorf("low-bit embedding changed a sample by %f", comparison.MaxDifference)
	}
	// Only the frame's samples can flip, and each flip is at most one LSB.
	maxChanges := 32 + len(message)*8
	if comparison.LSBChanges == 0 || comparison.LSBChanges > maxChanges {
		t.Errorf("LSB changes: got %d, want 1..%d", comparison.LSBChanges, maxChanges)
	}
	if !math.IsInf(comparison.PSNR, 1) && comparison.PSNR < 40 {
		t.Errorf("PSNR after a tiny embed should be high, got %f", comparison.PSNR)
	}
}

func TestCompare_DimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.png")
	large := filepath.Join(dir, "large.png")
	writeUniformPNG(t, small, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	img := image.NewNRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		}
	}
	writeImage(t, large, img)

	if _, err := NewAnalyzer(nil).Compare(small, large); err == nil {
		t.Fatal("Compare should reject mismatched dimensions")
	}
}
