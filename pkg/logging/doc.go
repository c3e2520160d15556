// Package logging provides structured logging configuration for apisim.
//
// This package wraps log/slog so every component logs the same way. It
// supports configurable levels, text or JSON output, and an optional
// rotating log file.
//
// # Usage
//
//	logger, closer := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	    File:   logging.FileConfig{Path: "/var/log/apisim.log"},
//	})
//	defer closer.Close()
//
//	logger.Info("server started", "port", 5050)
//
// Components accept a *slog.Logger and default to Nop() when none is given.
//
// # Log Files
//
// When File.Path is set, records are written to both Output and the file.
// The file is rotated by gopkg.in/natefinch/lumberjack.v2 and always uses
// JSON so it can be shipped as is.
package logging
