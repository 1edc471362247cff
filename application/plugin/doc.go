// Package plugin defines the contract every Mapp implements and the
// host-facing Client shape shared by every deployment mode.
//
// Mapp and Client are generated from the Signature Table. A plugin type
// satisfies Mapp, usually by embedding Versioned:
//
//	type Spinner struct {
//		plugin.Versioned
//		guest.IOBuffer
//		...
//	}
//
// Delegate adapts a Mapp compiled into the host process to Client, so the
// host driver calls in-process and sandboxed plugins the same way.
package plugin

//go:generate go run ../../cmd/mappgen generate --mode native --out mapp_gen.go
//go:generate go run ../../cmd/mappgen generate --mode delegate --out delegate_gen.go
