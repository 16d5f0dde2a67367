// Package audit provides the structured audit event model, sink
// implementations, and the async dispatcher used by the gateway.
//
// # Sinks
//
//   - [NoOpSink] discards everything.
//   - [ChannelSink] is a buffered channel, for tests and fan-out.
//   - [JSONWriterSink] writes one JSON object per line to an io.Writer.
//   - [ZerologSink] emits structured log lines via rs/zerolog.
//
// # What this package must NOT do
//
//   - Import the root authkit package.
//   - Carry credential material in events. Callers populate events
//     with identifiers and outcome only.
package audit
