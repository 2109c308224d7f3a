package batch

import (
	"fmt"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joemunene-by/Steganography-tool/internal/stego"
)

// Kind tags an operation as an encode or decode request.
type Kind string

const (
	KindEncode Kind = "encode"
	KindDecode Kind = "decode"
)

// Status tags a result as a success or failure.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Operation is an immutable request descriptor. Build one with
// NewEncodeOperation or NewDecodeOperation and do not modify it after
// submission; the engine and the caller share it by value through Results.
type Operation struct {
	// ID identifies the operation across submission and results.
	ID string `json:"id"`

	Kind      Kind   `json:"kind"`
	InputPath string `json:"input_path"`

	// Message is the payload to hide (encode only).
	Message []byte `json:"-"`

	// OutputPath is the encoded image destination (encode) or an optional
	// file to write the decoded message to (decode).
	OutputPath string `json:"output_path,omitempty"`

	// Password enables the encryption envelope.
	Password string `json:"-"`

	// Compress enables the payload compression stage (encode only).
	Compress bool `json:"compress,omitempty"`

	// RawBytes accepts the decoded message as raw bytes (decode only). When
	// false, a decoded message that is not valid UTF-8 fails the operation.
	RawBytes bool `json:"raw_bytes,omitempty"`
}

// NewEncodeOperation builds an encode request.
func NewEncodeOperation(inputPath string, message []byte, outputPath, password string, compress bool) Operation {
	return Operation{
		ID:         uuid.NewString(),
		Kind:       KindEncode,
		InputPath:  inputPath,
		Message:    message,
		OutputPath: outputPath,
		Password:   password,
		Compress:   compress,
	}
}

// NewDecodeOperation builds a decode request. outputPath may be empty to
// keep the decoded message in memory only.
func NewDecodeOperation(inputPath, outputPath, password string, rawBytes bool) Operation {
	return Operation{
		ID:         uuid.NewString(),
		Kind:       KindDecode,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Password:   password,
		RawBytes:   rawBytes,
	}
}

// Result is the outcome of one operation. It is created when the operation's
// pipeline completes and never mutated afterwards.
type Result struct {
	Operation Operation `json:"operation"`
	Status    Status    `json:"status"`

	// Message holds the decoded payload for successful decode operations.
	Message []byte `json:"-"`

	// Err describes the failure for StatusFailure results.
	Err string `json:"error,omitempty"`
}

// Progress is sent once per completed operation to the optional progress
// channel. Completed counts operations finished so far, in completion order.
type Progress struct {
	Completed int
	Total     int
	Result    Result
}

// Engine runs independent steganography operations under a bounded worker
// pool. Operations share nothing but the worker slots and the result
// collection point; a failure in one never aborts its siblings.
type Engine struct {
	workers int
	encoder *stego.Encoder
	decoder *stego.Decoder
	log     *zap.Logger
}

// NewEngine creates an engine with the given worker count. Counts below 1
// are clamped to 1. A nil logger disables logging.
func NewEngine(workers int, encoder *stego.Encoder, decoder *stego.Decoder, log *zap.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{workers: workers, encoder: encoder, decoder: decoder, log: log}
}

// Run executes all operations and returns one result per operation in
// completion order, not submission order. Callers needing submission order
// must correlate through Operation.ID.
func (e *Engine) Run(ops []Operation) []Result {
	return e.RunWithProgress(ops, nil)
}

// RunWithProgress is Run with a notification channel that receives one
// Progress message per completed operation. The channel is sent to from the
// result collector, not from workers, so a slow consumer delays result
// collection but never a worker mid-operation; buffer the channel to
// len(ops) to avoid even that. RunWithProgress does not close the channel.
//
// There is no cancellation or timeout: an operation stuck in file I/O holds
// its worker until it returns.
func (e *Engine) RunWithProgress(ops []Operation, progress chan<- Progress) []Result {
	tasks := make(chan Operation)
	outcomes := make(chan Result, len(ops))

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for op := range tasks {
				outcomes <- e.execute(op)
			}
		}()
	}

	go func() {
		for _, op := range ops {
			tasks <- op
		}
		close(tasks)
		wg.Wait()
		close(outcomes)
	}()

	results := make([]Result, 0, len(ops))
	for res := range outcomes {
		results = append(results, res)
		if progress != nil {
			progress <- Progress{Completed: len(results), Total: len(ops), Result: res}
		}
	}

	e.log.Info("batch complete",
		zap.Int("operations", len(ops)),
		zap.Int("workers", e.workers),
		zap.Int("failures", countFailures(results)),
	)
	return results
}

// execute runs one operation's full pipeline and downgrades any error (or
// panic) into that operation's failure result.
func (e *Engine) execute(op Operation) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Operation: op, Status: StatusFailure, Err: fmt.Sprintf("panic: %v", r)}
			e.log.Error("operation panicked", zap.String("id", op.ID), zap.Any("panic", r))
		}
	}()

	switch op.Kind {
	case KindEncode:
		err := e.encoder.Encode(op.InputPath, op.Message, op.OutputPath, stego.EncodeOptions{
			Password: op.Password,
			Compress: op.Compress,
		})
		if err != nil {
			return Result{Operation: op, Status: StatusFailure, Err: err.Error()}
		}
		return Result{Operation: op, Status: StatusSuccess}

	case KindDecode:
		message, err := e.decoder.Decode(op.InputPath, stego.DecodeOptions{Password: op.Password})
		if err != nil {
			return Result{Operation: op, Status: StatusFailure, Err: err.Error()}
		}
		if !op.RawBytes && !utf8.Valid(message) {
			return Result{Operation: op, Status: StatusFailure, Err: "message is not valid UTF-8 (use raw bytes mode for binary payloads)"}
		}
		if op.OutputPath != "" {
			if err := os.WriteFile(op.OutputPath, message, 0o644); err != nil {
				return Result{Operation: op, Status: StatusFailure, Err: err.Error()}
			}
		}
		return Result{Operation: op, Status: StatusSuccess, Message: message}

	default:
		return Result{Operation: op, Status: StatusFailure, Err: fmt.Sprintf("unknown operation kind: %s", op.Kind)}
	}
}

func countFailures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusFailure {
			n++
		}
	}
	return n
}
