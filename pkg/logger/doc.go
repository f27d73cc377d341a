// Package logger provides the structured logging interface used across pixelripper.
//
// It wraps zerolog. Console output is human readable and goes to stderr;
// when a log file is configured, JSON lines are appended to it instead.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "downloader")
//	log.InfoWithFields("Batch finished", map[string]interface{}{
//	    "category": "images",
//	    "failed":   2,
//	})
//
// Tests use NewNopLogger, or NewTestLogger to assert on what was logged.
package logger
