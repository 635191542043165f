// Package main provides the entry point for minredis-cli.
//
// minredis-cli sends one command to a minredis server and prints the reply.
package main
