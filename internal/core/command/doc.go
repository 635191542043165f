// Package command executes decoded commands against the store.
//
// Execute never fails: every outcome, including malformed commands and
// domain errors, is a wire-ready reply string. Any structural mismatch for a
// known command (wrong arity, a non-bulk argument) produces the same reply as
// an unknown command name. Command names are matched case-sensitively.
package command
