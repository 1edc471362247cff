package entities

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// CommandResponseKind is the result half of a host-performed operation.
type CommandResponseKind interface {
	variant
	isCommandResponseKind()
}

// CommandResponse carries the result of the command with ID CommandID.
// Nothing here checks that the command is actually outstanding; correlation
// belongs to whoever routes commands.
type CommandResponse struct {
	CommandID uint64
	Kind      CommandResponseKind
}

// ModelCreateResult is the handle of the uploaded model.
type ModelCreateResult struct {
	Model Model `json:"model"`
}

// EntityRootGetResult is the scene root.
type EntityRootGetResult struct {
	Root Entity `json:"root"`
}

// EntityCreateResult is the newly created entity.
type EntityCreateResult struct {
	Entity Entity `json:"entity"`
}

// EntityParentSetResult holds the parent before the change.
type EntityParentSetResult struct {
	Previous *Entity `json:"previous"`
}

// EntityModelSetResult holds the model before the change.
type EntityModelSetResult struct {
	Previous *Model `json:"previous"`
}

// EntityTransformSetResult holds the transform before the change.
type EntityTransformSetResult struct {
	Previous *Mat4 `json:"previous"`
}

// GetViewOrientationResult has one entry per medium; a nil entry means the
// medium currently reports no views.
type GetViewOrientationResult struct {
	Mediums [][]View `json:"mediums"`
}

// RayTraceResult is the closest intersection, if any.
type RayTraceResult struct {
	Intersection *Intersection `json:"intersection"`
}

// ExitResult acknowledges an exit request.
type ExitResult struct{}

func (ModelCreateResult) VariantName() string        { return "ModelCreate" }
func (EntityRootGetResult) VariantName() string      { return "EntityRootGet" }
func (EntityCreateResult) VariantName() string       { return "EntityCreate" }
func (EntityParentSetResult) VariantName() string    { return "EntityParentSet" }
func (EntityModelSetResult) VariantName() string     { return "EntityModelSet" }
func (EntityTransformSetResult) VariantName() string { return "EntityTransformSet" }
func (GetViewOrientationResult) VariantName() string { return "GetViewOrientation" }
func (RayTraceResult) VariantName() string           { return "RayTrace" }
func (ExitResult) VariantName() string               { return "Exit" }

func (ModelCreateResult) isCommandResponseKind()        {}
func (EntityRootGetResult) isCommandResponseKind()      {}
func (EntityCreateResult) isCommandResponseKind()       {}
func (EntityParentSetResult) isCommandResponseKind()    {}
func (EntityModelSetResult) isCommandResponseKind()     {}
func (EntityTransformSetResult) isCommandResponseKind() {}
func (GetViewOrientationResult) isCommandResponseKind() {}
func (RayTraceResult) isCommandResponseKind()           {}
func (ExitResult) isCommandResponseKind()               {}

var responseKinds = newUnionCodec[CommandResponseKind]("CommandResponseKind",
	ModelCreateResult{},
	EntityRootGetResult{},
	EntityCreateResult{},
	EntityParentSetResult{},
	EntityModelSetResult{},
	EntityTransformSetResult{},
	GetViewOrientationResult{},
	RayTraceResult{},
	ExitResult{},
)

// ResponseVariantNames lists every CommandResponseKind variant in declaration order.
func ResponseVariantNames() []string {
	return responseKinds.variantNames()
}

// NewCommandResponseKind returns the zero value of the named variant.
func NewCommandResponseKind(name string) (CommandResponseKind, bool) {
	return responseKinds.zero(name)
}

// Answers reports whether r is a well-formed answer to c: same id and the
// same-named variant.
func (r CommandResponse) Answers(c Command) bool {
	if r.Kind == nil || c.Kind == nil {
		return false
	}
	return r.CommandID == c.ID && r.Kind.VariantName() == c.Kind.VariantName()
}

type responseWire struct {
	CommandID uint64              `json:"command_id"`
	Kind      jsoniter.RawMessage `json:"kind"`
}

// MarshalJSON implements json.Marshaler.
func (r CommandResponse) MarshalJSON() ([]byte, error) {
	kind, err := responseKinds.marshal(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("response to command %d: %w", r.CommandID, err)
	}
	return json.Marshal(responseWire{CommandID: r.CommandID, Kind: kind})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *CommandResponse) UnmarshalJSON(data []byte) error {
	var wire responseWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	kind, err := responseKinds.unmarshal(wire.Kind)
	if err != nil {
		return fmt.Errorf("response to command %d: %w", wire.CommandID, err)
	}
	r.CommandID = wire.CommandID
	r.Kind = kind
	return nil
}
