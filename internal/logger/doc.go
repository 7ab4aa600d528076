// Package logger wraps zap with a process-wide sugared logger and context helpers.
//
// Services receive a context and pull the logger out of it, so names and
// key-value pairs attached upstream (WithName, WithKV) follow every message.
// Output goes to stderr: stdout belongs to the command reports.
package logger
