// Package mapp is the root of the Mapp SDK: the binding version and the
// schema types plugins and hosts exchange.
//
// Plugins implement plugin.Mapp and register with the guest package; hosts
// load them with the host package.
package mapp

import "github.com/metaview-dev/mapp-sdk/domain/entities"

// Version is the binding version. Guests report it from api_version and
// hosts gate compatibility on it before any other call.
const Version = "0.3.0"

// Schema types, re-exported for plugin authors.
type (
	Command         = entities.Command
	CommandKind     = entities.CommandKind
	CommandResponse = entities.CommandResponse
	Event           = entities.Event
	IO              = entities.IO
	Model           = entities.Model
	Entity          = entities.Entity
	Device          = entities.Device
	Vec3            = entities.Vec3
	Mat4            = entities.Mat4
	Base64ByteSlice = entities.Base64ByteSlice
)
