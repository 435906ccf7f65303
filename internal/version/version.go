// Package version carries build metadata injected with -ldflags "-X pagsusi/internal/version.Commit=...".
package version

var Commit = "dev"
