package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joemunene-by/Steganography-tool/internal/analysis"
	"github.com/joemunene-by/Steganography-tool/internal/batch"
	"github.com/joemunene-by/Steganography-tool/internal/crypto"
	"github.com/joemunene-by/Steganography-tool/internal/imaging"
	"github.com/joemunene-by/Steganography-tool/internal/server"
	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

// newEncoder builds an encoder whose output behavior follows the loaded
// configuration.
func (a *app) newEncoder() *stego.Encoder {
	encoder := stego.NewEncoder(a.log)
	encoder.Output = imaging.StoreOptions{
		JPEGQuality:   a.cfg.JPEGQuality,
		Overwrite:     a.cfg.OverwriteExisting,
		DefaultFormat: a.cfg.DefaultFormat,
	}
	return encoder
}

func (a *app) encode(args []string) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	input := fs.String("i", "", "path to the carrier image")
	output := fs.String("o", "", "path to save the encoded image")
	message := fs.String("m", "", "message to encode")
	file := fs.String("f", "", "file containing the message to encode")
	compress := fs.Bool("compress", a.cfg.UseCompression, "compress the message before embedding")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -i and -o are required")
		return 1
	}
	if (*message == "") == (*file == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -m or -f must be specified")
		return 1
	}

	payload := []byte(*message)
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading message file: %v\n", err)
			return 1
		}
		payload = data
	}

	encoder := a.newEncoder()
	err := encoder.Encode(*input, payload, *output, stego.EncodeOptions{
		Password: a.password,
		Compress: *compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Successfully encoded message into %s\n", *output)
	return 0
}

func (a *app) decode(args []string) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	input := fs.String("i", "", "path to the encoded image")
	output := fs.String("o", "", "path to save the decoded message (optional)")
	asBytes := fs.Bool("bytes", false, "treat the message as raw bytes")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -i is required")
		return 1
	}

	decoder := stego.NewDecoder(a.log)
	message, err := decoder.Decode(*input, stego.DecodeOptions{Password: a.password})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !*asBytes && !utf8.Valid(message) {
		fmt.Fprintln(os.Stderr, "Error: failed to decode message as UTF-8 (use -bytes for binary payloads)")
		return 1
	}

	if *output != "" {
		if err := os.WriteFile(*output, message, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Successfully decoded message to %s\n", *output)
		return 0
	}

	if *asBytes {
		os.Stdout.Write(message)
	} else {
		fmt.Printf("Decoded message: %s\n", message)
	}
	return 0
}

func (a *app) capacity(args []string) int {
	fs := flag.NewFlagSet("capacity", flag.ContinueOnError)
	input := fs.String("i", "", "path to the image")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -i is required")
		return 1
	}

	encoder := a.newEncoder()
	capacity, err := encoder.CapacityOf(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Maximum message capacity: %d bytes\n", capacity)
	fmt.Printf("Maximum message capacity: %.2f KB\n", float64(capacity)/1024)
	return 0
}

func (a *app) check(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	input := fs.String("i", "", "path to the image")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -i is required")
		return 1
	}

	decoder := stego.NewDecoder(a.log)
	if decoder.HasMessage(*input) {
		fmt.Println("Hidden message detected in the image")
		return 0
	}
	fmt.Println("No hidden message detected in the image")
	return 1
}

func (a *app) analyze(args []string) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	input := fs.String("i", "", "path to the image")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -i is required")
		return 1
	}

	report, err := analysis.NewAnalyzer(a.log).Analyze(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return printJSON(report)
}

func (a *app) compare(args []string) int {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	original := fs.String("original", "", "path to the original image")
	encoded := fs.String("encoded", "", "path to the encoded image")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *original == "" || *encoded == "" {
		fmt.Fprintln(os.Stderr, "Error: -original and -encoded are required")
		return 1
	}

	comparison, err := analysis.NewAnalyzer(a.log).Compare(*original, *encoded)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return printJSON(comparison)
}

func (a *app) batchEncode(args []string) int {
	fs := flag.NewFlagSet("batch-encode", flag.ContinueOnError)
	inputDir := fs.String("d", "", "directory containing carrier images")
	outputDir := fs.String("o", a.cfg.OutputDirectory, "directory for encoded images")
	message := fs.String("m", "", "message to encode into every image")
	compress := fs.Bool("compress", a.cfg.UseCompression, "compress the message before embedding")
	workers := fs.Int("workers", a.cfg.MaxWorkers, "number of parallel workers")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *inputDir == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "Error: -d and -m are required")
		return 1
	}

	ops, err := batch.EncodeOperationsForDir(*inputDir, *outputDir, []byte(*message), a.password, *compress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(ops) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no images found in %s\n", *inputDir)
		return 1
	}

	return a.runBatch(ops, *workers)
}

func (a *app) batchDecode(args []string) int {
	fs := flag.NewFlagSet("batch-decode", flag.ContinueOnError)
	inputDir := fs.String("d", "", "directory containing encoded images")
	outputDir := fs.String("o", "", "directory for decoded messages (optional)")
	asBytes := fs.Bool("bytes", false, "write decoded messages as raw bytes")
	workers := fs.Int("workers", a.cfg.MaxWorkers, "number of parallel workers")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *inputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -d is required")
		return 1
	}

	paths, err := batch.FindImages(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no images found in %s\n", *inputDir)
		return 1
	}
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	ops := make([]batch.Operation, 0, len(paths))
	for _, path := range paths {
		outputPath := ""
		if *outputDir != "" {
			outputPath = batchDecodeOutputPath(*outputDir, path)
		}
		ops = append(ops, batch.NewDecodeOperation(path, outputPath, a.password, *asBytes))
	}

	return a.runBatch(ops, *workers)
}

// runBatch executes the operations with a progress feed and prints a
// per-operation line plus a summary.
func (a *app) runBatch(ops []batch.Operation, workers int) int {
	encoder := a.newEncoder()
	decoder := stego.NewDecoder(a.log)
	engine := batch.NewEngine(workers, encoder, decoder, a.log)

	progress := make(chan batch.Progress, len(ops))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			status := "ok"
			if p.Result.Status == batch.StatusFailure {
				status = "FAILED: " + p.Result.Err
			}
			fmt.Printf("[%d/%d] %s: %s\n", p.Completed, p.Total, p.Result.Operation.InputPath, status)
		}
	}()

	results := engine.RunWithProgress(ops, progress)
	close(progress)
	<-done

	failures := 0
	for _, res := range results {
		if res.Status == batch.StatusFailure {
			failures++
		}
	}
	fmt.Printf("Completed %d operations, %d failed\n", len(results), failures)
	if failures > 0 {
		return 1
	}
	return 0
}

func (a *app) generatePassword(args []string) int {
	fs := flag.NewFlagSet("generate-password", flag.ContinueOnError)
	length := fs.Int("length", a.cfg.PasswordLength, "password length")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	password, err := crypto.GeneratePassword(*length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(password)
	return 0
}

func (a *app) serve(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", a.cfg.ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	a.cfg.ListenAddr = *addr

	srv := server.New(a.cfg, a.log)
	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func batchDecodeOutputPath(dir, imagePath string) string {
	name := filepath.Base(imagePath)
	return filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".txt")
}

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
