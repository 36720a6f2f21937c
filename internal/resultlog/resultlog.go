// Package resultlog appends measurement outcomes to a size capped JSONL file
// for later auditing. The annotated image is left out to keep records small.
package resultlog

import (
	"encoding/json"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/measure"
)

// Rotation defaults applied when the config leaves them unset.
const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 3
)

// A Logger appends one record per processed request.
type Logger struct {
	mu  sync.Mutex
	out *lumberjack.Logger
	enc *json.Encoder
}

// Record is one measurement outcome in its logged form.
type Record struct {
	Time         time.Time             `json:"time"`
	RequestID    string                `json:"request_id"`
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	Measurements []measure.Measurement `json:"measurements"`
}

// NewLogger opens, creating if needed, the result log at the configured path.
func NewLogger(cfg *config.ResultLogConfig) *Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	out := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   cfg.Compress,
	}
	return &Logger{out: out, enc: json.NewEncoder(out)}
}

// Append writes one result to the log.
func (l *Logger) Append(requestID string, res measure.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(Record{
		Time:         time.Now().UTC(),
		RequestID:    requestID,
		Success:      res.Success,
		Message:      res.Message,
		Measurements: res.Measurements,
	})
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}
