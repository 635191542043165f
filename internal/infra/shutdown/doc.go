// Package shutdown coordinates graceful process termination.
//
// Components register hooks with OnShutdown; Wait blocks until SIGINT or
// SIGTERM (or context cancellation, or Trigger) and then runs the hooks in
// reverse registration order under a single timeout.
package shutdown
