package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// FindImages returns the image files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func FindImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// EncodeOperationsForDir builds one encode operation per image in inputDir,
// all hiding the same message. Output files land in outputDir as
// "<name>_encoded<ext>".
func EncodeOperationsForDir(inputDir, outputDir string, message []byte, password string, compress bool) ([]Operation, error) {
	paths, err := FindImages(inputDir)
	if err != nil {
		return nil, err
	}

	ops := make([]Operation, 0, len(paths))
	for _, inputPath := range paths {
		name := filepath.Base(inputPath)
		ext := filepath.Ext(name)
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_encoded%s", strings.TrimSuffix(name, ext), ext))
		ops = append(ops, NewEncodeOperation(inputPath, message, outputPath, password, compress))
	}
	return ops, nil
}
