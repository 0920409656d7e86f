// Package logger wraps zap for the deployer:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and switching for the --log-level flag.
//
// Pipeline stages never hold a logger of their own; they pull it from the
// context, so tests can swap in an observed core and assert progress lines.
package logger
