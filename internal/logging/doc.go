// Package logging provides the leveled, multi-sink logger used by daylog.
//
// A [Logger] drops every record below its MinLevel threshold and fans the
// rest out to a fixed set of sinks:
//
//   - the console, always attached, with ANSI colors when writing to a
//     terminal
//   - a daily file sink, attached with [Logger.EnableFileLogging], writing
//     plain lines to <dir>/<YYYY-MM-DD>.log
//   - a remote sink, attached with [Logger.EnableRemoteLogging], which queues
//     JSON entries for a single background worker that POSTs them to the
//     collector
//
// Console and file lines share one layout:
//
//	2026-03-14 09:26:53 [WARNING ] disk usage at 91%
//
// # Thread Safety
//
// Log calls, sink enable/disable and Close are safe for concurrent use.
// Enable and disable calls wait for in-flight records, so a sink is never
// closed under a writer. MinLevel is a plain field; set it before sharing
// the logger or accept that concurrent callers may observe either value.
//
// # Basic Usage
//
//	logger := logging.New(logging.WithMinLevel(severity.Debug))
//	defer func() { _ = logger.Close(context.Background()) }()
//
//	if err := logger.EnableFileLogging("logs"); err != nil {
//	    return err
//	}
//	_ = logger.EnableRemoteLogging("billing")
//
//	logger.Info("charge accepted", "order", 1234)
//	logger.Error("charge failed", "order", 1235)
//
// Key-value arguments are carried only in remote entries. Console and file
// lines contain the message alone.
//
// # Remote Delivery
//
// Remote delivery is fire-and-forget. Entries are delivered in the order
// they were accepted, each attempt bounded by RemoteConfig.Timeout. A
// failed or timed-out attempt is counted and dropped; it is never retried
// and never reported to the caller. [Logger.RemoteStats] exposes the
// counters.
//
// # Reading Logs
//
// [ReadDay] and [ListDays] parse day files back into [Line] values for the
// logs command.
//
// # Testing
//
// Use [NopLogger] to discard all output, or pass [WithOutput], [WithClock]
// and [WithFs] to capture output and control rotation.
package logging
