// Package logger provides structured logging for CowKit.
//
// This package wraps the standard library log/slog to provide structured
// JSON logging for the bench harness and the cowbench binary. Library
// packages under pkg/ stay log-free; conditions there are reported
// synchronously to the caller as errors.
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - No-op logger for tests
//
// @req RQ-0403
// @design DS-0402
package logger
