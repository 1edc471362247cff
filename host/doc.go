// Package host drives Mapp guests.
//
// A Guest is the typed facade over a guest's raw exports: it encodes
// positional arguments, calls the export and decodes the result, poisoning
// itself on the first broken contract. NewGuest refuses guests whose binding
// version falls outside the host's semver range.
//
// The Executor loads guest modules into a wazero runtime. The Driver runs the
// per-tick protocol (events, update, command exchange, output) and routes
// commands to a CommandHandler such as the in-memory Scene.
//
//go:generate go run ../cmd/mappgen generate --mode host --out guest_gen.go
package host
