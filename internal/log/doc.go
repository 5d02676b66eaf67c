// Package log builds the slog loggers used by sitescribe.
//
// Every logger is wrapped in a SecureHandler that masks sensitive values
// before they are written:
//   - HTTP header and credential keys (Authorization, Cookie, token, password)
//   - secret-looking values (bearer tokens, JWTs, private key blocks)
//   - credentials embedded in crawled URLs (user:pass@host, ?token=...)
//
// NewLogger writes text or JSON records to the given writer and, when a log
// file is configured, to a size-rotated file as well:
//
//	logger, closer := log.NewLogger(os.Stderr, log.Options{
//	    Verbose: true,
//	    LogFile: "sitescribe.log",
//	})
//	defer closer.Close()
//	slog.SetDefault(logger)
package log
