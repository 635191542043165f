// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/Pessina/minredis/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/Pessina/minredis/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Fields left unset fall back to what the Go toolchain embedded in the binary.
package buildinfo
