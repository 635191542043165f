// Package command provides CLI command definitions for minredis-cli.
//
// It uses urfave/cli/v2 for flag parsing. Arguments that do not name a
// subcommand are sent to the server as a single command:
//
//	minredis-cli SET greeting hello
//	minredis-cli -o json GET greeting
package command
