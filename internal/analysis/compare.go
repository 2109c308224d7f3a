package analysis

import (
	"fmt"
	"math"

	"github.com/joemunene-by/Steganography-tool/internal/imaging"
)

// Comparison measures the pixel-level impact of an encode operation by
// diffing the original carrier against the encoded output.
type Comparison struct {
	PSNR           float64 `json:"psnr"`
	MSE            float64 `json:"mse"`
	MaxDifference  float64 `json:"max_difference"`
	MeanDifference float64 `json:"mean_difference"`
	LSBChanges     int     `json:"lsb_changes"`
	LSBChangePct   float64 `json:"lsb_change_percentage"`
	TotalSamples   int     `json:"total_samples"`
	QualityImpact  string  `json:"quality_impact"`
}

// Compare loads both images and reports the differences between their
// sample sequences. The images must have identical dimensions.
func (a *Analyzer) Compare(originalPath, encodedPath string) (*Comparison, error) {
	original, err := imaging.Load(originalPath)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.Load(encodedPath)
	if err != nil {
		return nil, err
	}

	if original.Width != encoded.Width || original.Height != encoded.Height {
		return nil, fmt.Errorf("images have different dimensions: %dx%d vs %dx%d",
			original.Width, original.Height, encoded.Width, encoded.Height)
	}

	var sumSq, sumAbs, maxDiff float64
	lsbChanges := 0
	for i := range original.Samples {
		diff := math.Abs(float64(original.Samples[i]) - float64(encoded.Samples[i]))
		sumSq += diff * diff
		sumAbs += diff
		if diff > maxDiff {
			maxDiff = diff
		}
		if original.Samples[i]&1 != encoded.Samples[i]&1 {
			lsbChanges++
		}
	}

	total := len(original.Samples)
	mse := sumSq / float64(total)

	psnr := math.Inf(1)
	if mse > 0 {
		psnr = 20 * math.Log10(255.0/math.Sqrt(mse))
	}

	return &Comparison{
		PSNR:           psnr,
		MSE:            mse,
		MaxDifference:  maxDiff,
		MeanDifference: sumAbs / float64(total),
		LSBChanges:     lsbChanges,
		LSBChangePct:   round4(float64(lsbChanges) / float64(total) * 100),
		TotalSamples:   total,
		QualityImpact:  qualityImpact(psnr),
	}, nil
}

func qualityImpact(psnr float64) string {
	switch {
	case math.IsInf(psnr, 1):
		return "No detectable changes"
	case psnr >= 40:
		return "Minimal impact (excellent quality)"
	case psnr >= 30:
		return "Low impact (good quality)"
	case psnr >= 20:
		return "Moderate impact (fair quality)"
	default:
		return "High impact (poor quality)"
	}
}
