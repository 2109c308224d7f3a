package analysis

import (
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/imaging"
	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

// Report is the full analysis of a carrier image.
type Report struct {
	File        FileInfo        `json:"file_info"`
	Properties  ImageProperties `json:"image_properties"`
	Capacity    CapacityInfo    `json:"capacity_analysis"`
	Statistics  Statistics      `json:"statistical_analysis"`
	Suitability Suitability     `json:"steganography_suitability"`
}

// FileInfo describes the carrier file on disk.
type FileInfo struct {
	Path      string  `json:"path"`
	SizeBytes int64   `json:"file_size"`
	SizeMB    float64 `json:"file_size_mb"`
	Format    string  `json:"format"`
}

// ImageProperties describes the decoded image.
type ImageProperties struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	TotalPixels int `json:"total_pixels"`
	Channels    int `json:"color_channels"`
}

// CapacityInfo describes how much payload the carrier can hold.
type CapacityInfo struct {
	TotalBits         int     `json:"total_bits_available"`
	MaxCapacityBytes  int     `json:"max_capacity_bytes"`
	MaxCapacityKB     float64 `json:"max_capacity_kb"`
	PracticalBytes    int     `json:"practical_capacity_bytes"`
	PracticalKB       float64 `json:"practical_capacity_kb"`
	HeaderOverheadPct float64 `json:"header_overhead_pct"`
}

// Statistics summarizes the sample value distribution.
type Statistics struct {
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std_dev"`
	Min       int       `json:"min"`
	Max       int       `json:"max"`
	Median    float64   `json:"median"`
	Histogram Histogram `json:"histogram"`
}

// Histogram summarizes the 256-bin sample histogram.
type Histogram struct {
	BinsUsed      int     `json:"bins_used"`
	BinsUnused    int     `json:"bins_unused"`
	Entropy       float64 `json:"entropy"`
	PeakValue     int     `json:"peak_value"`
	PeakFrequency int     `json:"peak_frequency"`
}

// Suitability estimates how well the carrier hides an LSB payload. Busy,
// noisy, colorful images score high; flat synthetic images score low.
type Suitability struct {
	LSBVariance    float64 `json:"lsb_variance"`
	NoiseLevel     float64 `json:"noise_level"`
	ColorDiversity float64 `json:"color_diversity"`
	Score          float64 `json:"suitability_score"`
	Recommendation string  `json:"recommendation"`
}

// Analyzer produces carrier reports and encode-impact comparisons.
type Analyzer struct {
	log *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil logger disables logging.
func NewAnalyzer(log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{log: log}
}

// Analyze loads the image at path and returns its full report.
func (a *Analyzer) Analyze(path string) (*Report, error) {
	info, err := imaging.LoadInfo(path)
	if err != nil {
		return nil, err
	}
	carrier, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}

	report := &Report{
		File: FileInfo{
			Path:      path,
			SizeBytes: info.FileSizeBytes,
			SizeMB:    round2(float64(info.FileSizeBytes) / (1024 * 1024)),
			Format:    info.Format,
		},
		Properties: ImageProperties{
			Width:       carrier.Width,
			Height:      carrier.Height,
			TotalPixels: carrier.Width * carrier.Height,
			Channels:    carrier.Channels,
		},
		Capacity:    analyzeCapacity(carrier),
		Statistics:  analyzeStatistics(carrier.Samples),
		Suitability: analyzeSuitability(carrier),
	}

	a.log.Debug("carrier analyzed",
		zap.String("path", path),
		zap.Int("capacity_bytes", report.Capacity.MaxCapacityBytes),
		zap.Float64("suitability", report.Suitability.Score),
	)
	return report, nil
}

func analyzeCapacity(c *imaging.Carrier) CapacityInfo {
	totalBits := c.SampleCount()
	maxBytes, err := stego.Capacity(totalBits)
	if err != nil {
		maxBytes = 0
	}
	practical := maxBytes * 9 / 10

	overhead := 0.0
	if totalBits > 0 {
		overhead = round4(32.0 / float64(totalBits) * 100)
	}

	return CapacityInfo{
		TotalBits:         totalBits,
		MaxCapacityBytes:  maxBytes,
		MaxCapacityKB:     round2(float64(maxBytes) / 1024),
		PracticalBytes:    practical,
		PracticalKB:       round2(float64(practical) / 1024),
		HeaderOverheadPct: overhead,
	}
}

func analyzeStatistics(samples []byte) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	var hist [256]int
	sum := 0.0
	min, max := int(samples[0]), int(samples[0])
	for _, s := range samples {
		v := int(s)
		hist[v]++
		sum += float64(v)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return Statistics{
		Mean:      mean,
		StdDev:    math.Sqrt(variance),
		Min:       min,
		Max:       max,
		Median:    histogramMedian(hist[:], len(samples)),
		Histogram: analyzeHistogram(hist[:]),
	}
}

func histogramMedian(hist []int, total int) float64 {
	// Median over the value histogram; averages the two middle samples for
	// even counts.
	lo := (total - 1) / 2
	hi := total / 2
	seen := 0
	loVal, hiVal := -1, -1
	for v, n := range hist {
		if n == 0 {
			continue
		}
		if loVal < 0 && seen+n > lo {
			loVal = v
		}
		if seen+n > hi {
			hiVal = v
			break
		}
		seen += n
	}
	return (float64(loVal) + float64(hiVal)) / 2
}

func analyzeHistogram(hist []int) Histogram {
	total := 0
	used := 0
	peakValue, peakFreq := 0, 0
	for v, n := range hist {
		total += n
		if n > 0 {
			used++
		}
		if n > peakFreq {
			peakFreq = n
			peakValue = v
		}
	}

	entropy := 0.0
	for _, n := range hist {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}

	return Histogram{
		BinsUsed:      used,
		BinsUnused:    256 - used,
		Entropy:       entropy,
		PeakValue:     peakValue,
		PeakFrequency: peakFreq,
	}
}

func analyzeSuitability(c *imaging.Carrier) Suitability {
	lsbVar := lsbVariance(c.Samples)
	noise := noiseLevel(c)
	diversity := colorDiversity(c)

	// Normalize each metric to 0-1, then weight; noise dominates because a
	// noisy carrier masks low-bit changes best.
	lsbScore := math.Min(lsbVar*10, 1.0)
	noiseScore := math.Min(noise/50, 1.0)
	score := (lsbScore*0.3 + noiseScore*0.4 + diversity*0.3) * 100

	return Suitability{
		LSBVariance:    lsbVar,
		NoiseLevel:     noise,
		ColorDiversity: diversity,
		Score:          round2(score),
		Recommendation: recommendation(score),
	}
}

func lsbVariance(samples []byte) float64 {
	if len(samples) == 0 {
		return 0
	}
	ones := 0
	for _, s := range samples {
		ones += int(s & 1)
	}
	p := float64(ones) / float64(len(samples))
	return p * (1 - p)
}

// laplacianKernel is the 3x3 operator used for the noise estimate.
var laplacianKernel = &convolution.Kernel{
	Matrix: []float64{
		0, -1, 0,
		-1, 4, -1,
		0, -1, 0,
	},
	Width:  3,
	Height: 3,
}

// noiseLevel estimates high-frequency content as the mean Laplacian response
// over the image. Convolution output is clamped to [0,255], so this slightly
// underestimates against a signed-response implementation; the score
// thresholds account for it.
func noiseLevel(c *imaging.Carrier) float64 {
	img, err := c.ToImage()
	if err != nil {
		return 0
	}

	response := convolution.Convolve(img, laplacianKernel, &convolution.Options{Bias: 0, Wrap: false})

	sum := 0.0
	count := 0
	bounds := response.Bounds()
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			r, g, b, _ := response.At(x, y).RGBA()
			sum += float64(r>>8+g>>8+b>>8) / 3
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// colorDiversity measures perceptual color spread as the mean CIE-Lab
// distance from each sampled pixel to the image's mean color, clamped to
// [0,1]. Uniform images score 0; vivid multi-colored images approach 1.
func colorDiversity(c *imaging.Carrier) float64 {
	pixels := c.Width * c.Height
	if pixels == 0 {
		return 0
	}

	// Sample at most ~10k pixels; diversity is a coarse metric and full
	// scans of large images buy nothing.
	stride := pixels / 10000
	if stride < 1 {
		stride = 1
	}

	var rSum, gSum, bSum float64
	n := 0
	for i := 0; i < pixels; i += stride {
		base := i * 3
		rSum += float64(c.Samples[base])
		gSum += float64(c.Samples[base+1])
		bSum += float64(c.Samples[base+2])
		n++
	}
	meanColor := colorful.Color{R: rSum / float64(n) / 255, G: gSum / float64(n) / 255, B: bSum / float64(n) / 255}

	sum := 0.0
	for i := 0; i < pixels; i += stride {
		base := i * 3
		px := colorful.Color{
			R: float64(c.Samples[base]) / 255,
			G: float64(c.Samples[base+1]) / 255,
			B: float64(c.Samples[base+2]) / 255,
		}
		sum += px.DistanceLab(meanColor)
	}
	return math.Min(sum/float64(n), 1.0)
}

func recommendation(score float64) string {
	switch {
	case score >= 80:
		return "Excellent for steganography"
	case score >= 60:
		return "Good for steganography"
	case score >= 40:
		return "Acceptable for steganography"
	case score >= 20:
		return "Poor for steganography"
	default:
		return "Not recommended for steganography"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
