package entities

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// CommandKind is the request half of a host-performed operation.
// Every variant has a same-named CommandResponseKind variant.
type CommandKind interface {
	variant
	isCommandKind()
}

// Command is an operation the guest asks the host to perform.
// ID is assigned by the guest and must be unique among its outstanding commands.
type Command struct {
	ID   uint64
	Kind CommandKind
}

// ModelCreateArgs uploads a serialized model.
type ModelCreateArgs struct {
	Data Base64ByteSlice `json:"data"`
}

// EntityRootGetArgs requests the root entity of the scene.
type EntityRootGetArgs struct{}

// EntityCreateArgs requests a new, detached entity.
type EntityCreateArgs struct{}

// EntityParentSetArgs reparents Entity; a nil Parent detaches it.
type EntityParentSetArgs struct {
	Entity Entity  `json:"entity"`
	Parent *Entity `json:"parent"`
}

// EntityModelSetArgs attaches Model to Entity; a nil Model clears it.
type EntityModelSetArgs struct {
	Entity Entity `json:"entity"`
	Model  *Model `json:"model"`
}

// EntityTransformSetArgs sets the local transform; nil resets it.
type EntityTransformSetArgs struct {
	Entity    Entity `json:"entity"`
	Transform *Mat4  `json:"transform"`
}

// GetViewOrientationArgs requests the current views of every medium.
type GetViewOrientationArgs struct{}

// RayTraceArgs casts a ray through the scene.
type RayTraceArgs struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// ExitArgs asks the host to stop driving the guest.
type ExitArgs struct{}

func (ModelCreateArgs) VariantName() string        { return "ModelCreate" }
func (EntityRootGetArgs) VariantName() string      { return "EntityRootGet" }
func (EntityCreateArgs) VariantName() string       { return "EntityCreate" }
func (EntityParentSetArgs) VariantName() string    { return "EntityParentSet" }
func (EntityModelSetArgs) VariantName() string     { return "EntityModelSet" }
func (EntityTransformSetArgs) VariantName() string { return "EntityTransformSet" }
func (GetViewOrientationArgs) VariantName() string { return "GetViewOrientation" }
func (RayTraceArgs) VariantName() string           { return "RayTrace" }
func (ExitArgs) VariantName() string               { return "Exit" }

func (ModelCreateArgs) isCommandKind()        {}
func (EntityRootGetArgs) isCommandKind()      {}
func (EntityCreateArgs) isCommandKind()       {}
func (EntityParentSetArgs) isCommandKind()    {}
func (EntityModelSetArgs) isCommandKind()     {}
func (EntityTransformSetArgs) isCommandKind() {}
func (GetViewOrientationArgs) isCommandKind() {}
func (RayTraceArgs) isCommandKind()           {}
func (ExitArgs) isCommandKind()               {}

var commandKinds = newUnionCodec[CommandKind]("CommandKind",
	ModelCreateArgs{},
	EntityRootGetArgs{},
	EntityCreateArgs{},
	EntityParentSetArgs{},
	EntityModelSetArgs{},
	EntityTransformSetArgs{},
	GetViewOrientationArgs{},
	RayTraceArgs{},
	ExitArgs{},
)

// CommandVariantNames lists every CommandKind variant in declaration order.
func CommandVariantNames() []string {
	return commandKinds.variantNames()
}

// NewCommandKind returns the zero value of the named variant.
func NewCommandKind(name string) (CommandKind, bool) {
	return commandKinds.zero(name)
}

type commandWire struct {
	ID   uint64              `json:"id"`
	Kind jsoniter.RawMessage `json:"kind"`
}

// MarshalJSON implements json.Marshaler.
func (c Command) MarshalJSON() ([]byte, error) {
	kind, err := commandKinds.marshal(c.Kind)
	if err != nil {
		return nil, fmt.Errorf("command %d: %w", c.ID, err)
	}
	return json.Marshal(commandWire{ID: c.ID, Kind: kind})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Command) UnmarshalJSON(data []byte) error {
	var wire commandWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	kind, err := commandKinds.unmarshal(wire.Kind)
	if err != nil {
		return fmt.Errorf("command %d: %w", wire.ID, err)
	}
	c.ID = wire.ID
	c.Kind = kind
	return nil
}
