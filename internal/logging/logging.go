package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	goamiddleware "goa.design/goa/v3/middleware"
	"gopkg.in/natefinch/lumberjack.v2"

	"leadforms/internal/config"
)

// Setup points the standard logger at stderr and, when a log file is configured,
// at a size-rotated file as well. The returned closer flushes the rotated file.
func Setup(cfg *config.LogConfig, prefix string) (io.Closer, error) {
	log.SetPrefix(prefix)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg == nil || cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}

	log.SetOutput(io.MultiWriter(os.Stderr, writer))
	return writer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RequestID returns the id the goa RequestID middleware put in ctx, or "-"
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(goamiddleware.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "-"
}
