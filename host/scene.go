package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
)

// CommandHandler performs the commands a guest sends.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd entities.Command) (entities.CommandResponseKind, error)
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc func(ctx context.Context, cmd entities.Command) (entities.CommandResponseKind, error)

// HandleCommand implements CommandHandler.
func (f CommandHandlerFunc) HandleCommand(ctx context.Context, cmd entities.Command) (entities.CommandResponseKind, error) {
	return f(ctx, cmd)
}

// Scene errors.
var (
	ErrUnknownEntity = stdErrors.New("scene: unknown entity")
	ErrUnknownModel  = stdErrors.New("scene: unknown model")
	ErrParentCycle   = stdErrors.New("scene: parent would create a cycle")
	ErrInvalidModel  = stdErrors.New("scene: invalid model data")
)

// RayTracer answers RayTrace commands against a Scene.
type RayTracer func(s *Scene, origin, direction entities.Vec3) *entities.Intersection

type node struct {
	parent    *entities.Entity
	model     *entities.Model
	transform entities.Mat4
}

// Scene is an in-memory CommandHandler. It tracks the models, entities,
// parents, transforms and views a guest can address, without rendering.
type Scene struct {
	models map[entities.Model][]byte
	nodes  map[entities.Entity]*node
	views  [][]entities.View
	tracer RayTracer
	root   entities.Entity
	next   uint64
	exited bool
	mu     sync.Mutex
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithViews sets the views reported for GetViewOrientation, one slice per
// medium. A nil slice means the medium reports no views.
func WithViews(mediums ...[]entities.View) SceneOption {
	return func(s *Scene) {
		s.views = mediums
	}
}

// WithRayTracer sets how RayTrace is answered. Without one, every ray misses.
func WithRayTracer(rt RayTracer) SceneOption {
	return func(s *Scene) {
		s.tracer = rt
	}
}

// NewScene returns a scene holding only its root entity.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{
		models: make(map[entities.Model][]byte),
		nodes:  make(map[entities.Entity]*node),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = s.newEntity()
	return s
}

var _ CommandHandler = (*Scene)(nil)

// HandleCommand implements CommandHandler.
func (s *Scene) HandleCommand(_ context.Context, cmd entities.Command) (entities.CommandResponseKind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch args := cmd.Kind.(type) {
	case entities.ModelCreateArgs:
		data, err := args.Data.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
		s.next++
		model := entities.Model(s.next)
		s.models[model] = data
		return entities.ModelCreateResult{Model: model}, nil

	case entities.EntityRootGetArgs:
		return entities.EntityRootGetResult{Root: s.root}, nil

	case entities.EntityCreateArgs:
		return entities.EntityCreateResult{Entity: s.newEntity()}, nil

	case entities.EntityParentSetArgs:
		n, err := s.node(args.Entity)
		if err != nil {
			return nil, err
		}
		if args.Parent != nil {
			if err := s.checkParent(args.Entity, *args.Parent); err != nil {
				return nil, err
			}
		}
		prev := n.parent
		n.parent = clonePtr(args.Parent)
		return entities.EntityParentSetResult{Previous: prev}, nil

	case entities.EntityModelSetArgs:
		n, err := s.node(args.Entity)
		if err != nil {
			return nil, err
		}
		if args.Model != nil {
			if _, ok := s.models[*args.Model]; !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownModel, *args.Model)
			}
		}
		prev := n.model
		n.model = clonePtr(args.Model)
		return entities.EntityModelSetResult{Previous: prev}, nil

	case entities.EntityTransformSetArgs:
		n, err := s.node(args.Entity)
		if err != nil {
			return nil, err
		}
		prev := n.transform
		if args.Transform != nil {
			n.transform = *args.Transform
		} else {
			n.transform = entities.Identity()
		}
		return entities.EntityTransformSetResult{Previous: &prev}, nil

	case entities.GetViewOrientationArgs:
		mediums := make([][]entities.View, len(s.views))
		for i, views := range s.views {
			if views != nil {
				mediums[i] = append([]entities.View{}, views...)
			}
		}
		return entities.GetViewOrientationResult{Mediums: mediums}, nil

	case entities.RayTraceArgs:
		if s.tracer == nil {
			return entities.RayTraceResult{}, nil
		}
		return entities.RayTraceResult{Intersection: s.tracer(s, args.Origin, args.Direction)}, nil

	case entities.ExitArgs:
		s.exited = true
		return entities.ExitResult{}, nil
	}
	return nil, fmt.Errorf("scene: unsupported command %T", cmd.Kind)
}

func (s *Scene) newEntity() entities.Entity {
	s.next++
	e := entities.Entity(s.next)
	s.nodes[e] = &node{transform: entities.Identity()}
	return e
}

func (s *Scene) node(e entities.Entity) (*node, error) {
	n, ok := s.nodes[e]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	return n, nil
}

// checkParent rejects unknown parents and any chain leading back to child.
func (s *Scene) checkParent(child, parent entities.Entity) error {
	for cur := &parent; cur != nil; {
		if *cur == child {
			return fmt.Errorf("%w: %d under %d", ErrParentCycle, child, parent)
		}
		n, err := s.node(*cur)
		if err != nil {
			return err
		}
		cur = n.parent
	}
	return nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Parent returns the parent of e, or false when e is detached or unknown.
func (s *Scene) Parent(e entities.Entity) (entities.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[e]
	if !ok || n.parent == nil {
		return 0, false
	}
	return *n.parent, true
}

// ModelOf returns the model attached to e, or false.
func (s *Scene) ModelOf(e entities.Entity) (entities.Model, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[e]
	if !ok || n.model == nil {
		return 0, false
	}
	return *n.model, true
}

// Transform returns the local transform of e.
func (s *Scene) Transform(e entities.Entity) (entities.Mat4, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[e]
	if !ok {
		return entities.Mat4{}, false
	}
	return n.transform, true
}

// ModelData returns the bytes uploaded for m.
func (s *Scene) ModelData(m entities.Model) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.models[m]
	return data, ok
}

// Root returns the root entity.
func (s *Scene) Root() entities.Entity {
	return s.root
}

// Len returns the number of entities, root included.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Exited reports whether an Exit command was handled.
func (s *Scene) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}
