// Package entities defines the message schema exchanged between a Mapp host
// and its guest: commands, command responses, events and IO buffers.
//
// These types serve dual purpose: they are the typed arguments and results of
// the binding methods AND the JSON wire format. Every value that can be
// constructed encodes deterministically and decodes back to an equal value.
// Tagged unions (CommandKind, CommandResponseKind, WindowEvent, DeviceEvent)
// are externally tagged on the wire:
//
//	{"EntityParentSet":{"entity":4,"parent":null}}
//	"EntityCreate"
//
// Variants without fields encode as a bare string.
package entities
