package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MinWidth and MinHeight are the smallest carrier dimensions accepted.
// Anything below this holds too little payload to be worth the header
// overhead and is almost always a caller mistake.
const (
	MinWidth  = 64
	MinHeight = 64
)

// Channels is the number of color channels in a normalized carrier. Every
// loaded image is converted to RGB before its samples are flattened.
const Channels = 3

// supportedExtensions are the carrier file formats accepted by Load and
// Store. JPEG is included for parity with common tooling, but it is lossy:
// low-bit payloads do not survive JPEG re-quantization.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// UnreadableImageError indicates a carrier that could not be loaded: missing
// file, unsupported format, corrupt data, or dimensions below the minimum.
type UnreadableImageError struct {
	Path   string
	Reason string
}

func (e *UnreadableImageError) Error() string {
	return fmt.Sprintf("failed to load image %s: %s", e.Path, e.Reason)
}

// UnwritableDestinationError indicates an output path that could not be
// written: bad extension, missing permissions, or encoder failure.
type UnwritableDestinationError struct {
	Path   string
	Reason string
}

func (e *UnwritableDestinationError) Error() string {
	return fmt.Sprintf("failed to save image %s: %s", e.Path, e.Reason)
}

// Carrier is an image flattened into an ordered sequence of 8-bit samples:
// one sample per color channel per pixel, row-major, R then G then B within
// each pixel. The sample buffer is owned by the caller; nothing in this
// package retains it after Load or Store returns.
type Carrier struct {
	Samples  []byte
	Width    int
	Height   int
	Channels int
}

// SampleCount returns the number of samples the carrier holds.
func (c *Carrier) SampleCount() int {
	return len(c.Samples)
}

// Clone returns a deep copy of the carrier.
func (c *Carrier) Clone() *Carrier {
	samples := make([]byte, len(c.Samples))
	copy(samples, c.Samples)
	return &Carrier{Samples: samples, Width: c.Width, Height: c.Height, Channels: c.Channels}
}

// Load validates and decodes an image file into a flat RGB sample sequence.
//
// The image is normalized to 3-channel RGB regardless of its on-disk color
// model; alpha, palette, and grayscale inputs all come back as packed RGB
// samples. Any failure is reported as an *UnreadableImageError.
func Load(path string) (*Carrier, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Reason: err.Error()}
	}
	return FromImage(path, img)
}

// FromImage flattens an already decoded image into a carrier. The path is
// carried only for error reporting and may be empty.
func FromImage(path string, img image.Image) (*Carrier, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < MinWidth || height < MinHeight {
		return nil, &UnreadableImageError{
			Path:   path,
			Reason: fmt.Sprintf("image too small: %dx%d, minimum size: %dx%d", width, height, MinWidth, MinHeight),
		}
	}

	// Clone normalizes any source color model to 8-bit NRGBA.
	nrgba := imaging.Clone(img)

	samples := make([]byte, 0, width*height*Channels)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			samples = append(samples, row[x*4], row[x*4+1], row[x*4+2])
		}
	}

	return &Carrier{Samples: samples, Width: width, Height: height, Channels: Channels}, nil
}

// ToImage rebuilds an image from the carrier's sample sequence.
func (c *Carrier) ToImage() (*image.NRGBA, error) {
	want := c.Width * c.Height * c.Channels
	if len(c.Samples) != want {
		return nil, fmt.Errorf("sample count %d does not match %dx%dx%d", len(c.Samples), c.Width, c.Height, c.Channels)
	}

	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	i := 0
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: c.Samples[i], G: c.Samples[i+1], B: c.Samples[i+2], A: 255})
			i += 3
		}
	}
	return img, nil
}

// defaultJPEGQuality applies when StoreOptions does not set one.
const defaultJPEGQuality = 95

// StoreOptions control how Store writes a carrier to disk. The zero value
// applies the package defaults: PNG fallback format, JPEG quality 95, and no
// overwriting of existing files.
type StoreOptions struct {
	// JPEGQuality applies when the destination format is JPEG (1-100).
	JPEGQuality int

	// Overwrite permits replacing an existing destination file.
	Overwrite bool

	// DefaultFormat is the output format used when the destination path has
	// no recognized extension, e.g. "png".
	DefaultFormat string
}

// Store encodes the carrier back to an image file. The format is chosen by
// the destination extension, falling back to opts.DefaultFormat for paths
// without a recognized one. Parent directories are created as needed, and an
// existing destination is replaced only when opts.Overwrite is set. Any
// failure is reported as an *UnwritableDestinationError.
func Store(c *Carrier, path string, opts StoreOptions) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		fallback := opts.DefaultFormat
		if fallback == "" {
			fallback = "png"
		}
		ext = "." + strings.TrimPrefix(strings.ToLower(fallback), ".")
		if !supportedExtensions[ext] {
			return &UnwritableDestinationError{Path: path, Reason: fmt.Sprintf("unsupported output format: %s", fallback)}
		}
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return &UnwritableDestinationError{Path: path, Reason: err.Error()}
	}

	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return &UnwritableDestinationError{Path: path, Reason: "destination exists and overwriting is disabled"}
		}
	}

	img, err := c.ToImage()
	if err != nil {
		return &UnwritableDestinationError{Path: path, Reason: err.Error()}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &UnwritableDestinationError{Path: path, Reason: err.Error()}
		}
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	f, err := os.Create(path)
	if err != nil {
		return &UnwritableDestinationError{Path: path, Reason: err.Error()}
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(quality)); err != nil {
		f.Close()
		return &UnwritableDestinationError{Path: path, Reason: err.Error()}
	}
	if err := f.Close(); err != nil {
		return &UnwritableDestinationError{Path: path, Reason: err.Error()}
	}
	return nil
}

// Info describes a carrier file without flattening it.
type Info struct {
	Path          string `json:"path"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Channels      int    `json:"channels"`
	SampleCount   int    `json:"sample_count"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	Format        string `json:"format"`
}

// LoadInfo returns metadata for an image file.
func LoadInfo(path string) (*Info, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Reason: err.Error()}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Reason: err.Error()}
	}
	stat, err := f.Stat()
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Reason: err.Error()}
	}

	return &Info{
		Path:          path,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Channels:      Channels,
		SampleCount:   cfg.Width * cfg.Height * Channels,
		FileSizeBytes: stat.Size(),
		Format:        format,
	}, nil
}

func validatePath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &UnreadableImageError{Path: path, Reason: "image file not found"}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return &UnreadableImageError{Path: path, Reason: fmt.Sprintf("unsupported image format: %s", ext)}
	}
	return nil
}
