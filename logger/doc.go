// Package logger provides structured logging for radscribe using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.NewFromEnv("radscribe").WithComponent("transcription")
//	log.Info("transcription completed", logger.Fields("backend", "deepgram"))
package logger
