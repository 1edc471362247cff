// Package schema describes the wire format as JSON Schema (draft 2020-12).
// Tagged unions become oneOf lists with one branch per variant, and every
// Signature Table method gets an argument tuple and a result definition.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	jsoniter "github.com/json-iterator/go"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
)

// ID is the $id of generated documents.
const ID = "https://github.com/metaview-dev/mapp-sdk/wire.schema.json"

// Definition names of the schema types with custom wire shapes.
const (
	DefCommand             = "Command"
	DefCommandKind         = "CommandKind"
	DefCommandResponse     = "CommandResponse"
	DefCommandResponseKind = "CommandResponseKind"
	DefEvent               = "Event"
	DefWindowEvent         = "WindowEvent"
	DefDeviceEvent         = "DeviceEvent"
	DefIO                  = "IO"
)

var (
	base64Type   = reflect.TypeOf(entities.Base64ByteSlice(""))
	durationType = reflect.TypeOf(time.Duration(0))
	commandType  = reflect.TypeOf(entities.Command{})
	responseType = reflect.TypeOf(entities.CommandResponse{})
	eventType    = reflect.TypeOf(entities.Event{})
	ioType       = reflect.TypeOf(entities.IO{})
)

// knownTypes maps Signature Table type expressions to Go types.
var knownTypes = map[string]reflect.Type{
	"bool":                     reflect.TypeOf(false),
	"string":                   reflect.TypeOf(""),
	"int":                      reflect.TypeOf(0),
	"int32":                    reflect.TypeOf(int32(0)),
	"int64":                    reflect.TypeOf(int64(0)),
	"uint32":                   reflect.TypeOf(uint32(0)),
	"uint64":                   reflect.TypeOf(uint64(0)),
	"float32":                  reflect.TypeOf(float32(0)),
	"float64":                  reflect.TypeOf(float64(0)),
	"[]byte":                   reflect.TypeOf([]byte(nil)),
	"time.Duration":            durationType,
	"entities.Command":         commandType,
	"entities.CommandResponse": responseType,
	"entities.Event":           eventType,
	"entities.IO":              ioType,
	"entities.Entity":          reflect.TypeOf(entities.Entity(0)),
	"entities.Model":           reflect.TypeOf(entities.Model(0)),
	"entities.Device":          reflect.TypeOf(entities.Device(0)),
}

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		Mapper:         mapType,
	}
}

// mapType replaces types whose JSON form differs from their Go shape.
func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case base64Type:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}
	case durationType:
		return &jsonschema.Schema{Type: "integer", Description: "duration in nanoseconds"}
	case commandType:
		return ref(DefCommand)
	case responseType:
		return ref(DefCommandResponse)
	case eventType:
		return ref(DefEvent)
	}
	return nil
}

func ref(def string) *jsonschema.Schema {
	return &jsonschema.Schema{Ref: "#/$defs/" + def}
}

func nullable(s *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{s, {Type: "null"}}}
}

// inline reflects t without document level keywords.
func inline(r *jsonschema.Reflector, t reflect.Type) *jsonschema.Schema {
	if s := mapType(t); s != nil {
		return s
	}
	s := r.ReflectFromType(t)
	s.Version = ""
	s.ID = ""
	s.Definitions = nil
	markNullable(t, s)
	return s
}

// markNullable rewrites pointer fields that encode as null when unset.
func markNullable(t reflect.Type, s *jsonschema.Schema) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || s == nil || s.Properties == nil {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		prop, ok := s.Properties.Get(name)
		if !ok {
			continue
		}
		markNullable(f.Type, prop)
		if f.Type.Kind() == reflect.Ptr && !strings.Contains(opts, "omitempty") && mapType(f.Type.Elem()) == nil {
			s.Properties.Set(name, nullable(prop))
		}
	}
}

// union builds a oneOf over the variants of a tagged union. Unit variants
// are the bare name; the others are single key objects.
func union[T interface{ VariantName() string }](r *jsonschema.Reflector, title string, names []string, zero func(string) (T, bool)) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Title: title}
	for _, name := range names {
		v, ok := zero(name)
		if !ok {
			return nil, fmt.Errorf("%s: no variant %q", title, name)
		}
		t := reflect.TypeOf(v)
		if t.Kind() == reflect.Struct && t.NumField() == 0 {
			s.OneOf = append(s.OneOf, &jsonschema.Schema{Type: "string", Const: name})
			continue
		}
		props := jsonschema.NewProperties()
		props.Set(name, inline(r, t))
		s.OneOf = append(s.OneOf, &jsonschema.Schema{
			Type:                 "object",
			Properties:           props,
			Required:             []string{name},
			AdditionalProperties: jsonschema.FalseSchema,
		})
	}
	return s, nil
}

func object(title string, fields ...any) *jsonschema.Schema {
	props := jsonschema.NewProperties()
	var required []string
	for i := 0; i+1 < len(fields); i += 2 {
		name := fields[i].(string)
		props.Set(name, fields[i+1].(*jsonschema.Schema))
		required = append(required, name)
	}
	return &jsonschema.Schema{
		Title:                title,
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

// Definitions returns the schemas of every wire type, keyed by the Def*
// constants.
func Definitions() (jsonschema.Definitions, error) {
	r := newReflector()
	defs := jsonschema.Definitions{}

	var err error
	if defs[DefCommandKind], err = union(r, DefCommandKind, entities.CommandVariantNames(), entities.NewCommandKind); err != nil {
		return nil, err
	}
	if defs[DefCommandResponseKind], err = union(r, DefCommandResponseKind, entities.ResponseVariantNames(), entities.NewCommandResponseKind); err != nil {
		return nil, err
	}
	if defs[DefWindowEvent], err = union(r, DefWindowEvent, entities.WindowEventNames(), entities.NewWindowEventKind); err != nil {
		return nil, err
	}
	if defs[DefDeviceEvent], err = union(r, DefDeviceEvent, entities.DeviceEventNames(), entities.NewDeviceEventKind); err != nil {
		return nil, err
	}

	id := &jsonschema.Schema{Type: "integer", Minimum: "0"}
	defs[DefCommand] = object(DefCommand, "id", id, "kind", ref(DefCommandKind))
	defs[DefCommandResponse] = object(DefCommandResponse, "command_id", id, "kind", ref(DefCommandResponseKind))
	defs[DefEvent] = &jsonschema.Schema{
		Title: DefEvent,
		OneOf: []*jsonschema.Schema{
			object("", "Window", ref(DefWindowEvent)),
			object("", "DeviceEvent", object("", "device_id", id, "event", ref(DefDeviceEvent))),
		},
	}
	defs[DefIO] = inline(r, ioType)
	defs[DefIO].Title = DefIO
	return defs, nil
}

// TypeSchema returns the schema of a Signature Table type expression.
func TypeSchema(expr string) (*jsonschema.Schema, error) {
	expr = strings.TrimSpace(expr)
	if inner, ok := strings.CutPrefix(expr, "*"); ok {
		s, err := TypeSchema(inner)
		if err != nil {
			return nil, err
		}
		return nullable(s), nil
	}
	if inner, ok := strings.CutPrefix(expr, "[]"); ok && inner != "byte" {
		s, err := TypeSchema(inner)
		if err != nil {
			return nil, err
		}
		return &jsonschema.Schema{Type: "array", Items: s}, nil
	}
	t, ok := knownTypes[expr]
	if !ok {
		return nil, fmt.Errorf("no schema for type %q", expr)
	}
	if t == ioType {
		return ref(DefIO), nil
	}
	return inline(newReflector(), t), nil
}

// ArgsDef and ResultDef name the definitions generated for a method.
func ArgsDef(method string) string   { return method + ".args" }
func ResultDef(method string) string { return method + ".result" }

// Generate returns a document describing every wire type and the argument
// tuple and result of each table method, plus the api_version built-in.
func Generate(table *signature.Table) (*jsonschema.Schema, error) {
	if table == nil {
		return nil, fmt.Errorf("schema: nil table")
	}
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}

	addMethod := func(name, doc string, params []signature.Param, returns string) error {
		items := make([]*jsonschema.Schema, 0, len(params))
		for _, p := range params {
			s, err := TypeSchema(p.Type)
			if err != nil {
				return fmt.Errorf("%s parameter %s: %w", name, p.Name, err)
			}
			s.Title = p.Name
			items = append(items, s)
		}
		n := uint64(len(items))
		defs[ArgsDef(name)] = &jsonschema.Schema{
			Description: strings.TrimSpace(doc),
			Type:        "array",
			PrefixItems: items,
			Items:       jsonschema.FalseSchema,
			MinItems:    &n,
			MaxItems:    &n,
		}

		result := &jsonschema.Schema{Type: "null"}
		if returns != "" {
			if result, err = TypeSchema(returns); err != nil {
				return fmt.Errorf("%s result: %w", name, err)
			}
		}
		defs[ResultDef(name)] = result
		return nil
	}

	if err := addMethod(signature.ExportAPIVersion, "Binding version the guest was built with.", nil, "string"); err != nil {
		return nil, err
	}
	for _, m := range table.Methods {
		if err := addMethod(m.Name, m.Doc, m.Params, m.Returns); err != nil {
			return nil, err
		}
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		ID:          ID,
		Title:       "Mapp wire format",
		Definitions: defs,
	}, nil
}

// Marshal renders a schema as indented JSON.
func Marshal(s *jsonschema.Schema) ([]byte, error) {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// GenerateSchema creates a standalone JSON schema for a Go value, using the
// wire shapes for SDK types it contains.
func GenerateSchema(v interface{}) ([]byte, error) {
	r := newReflector()
	r.Anonymous = false
	s := r.Reflect(v)
	markNullable(reflect.TypeOf(v), s)
	return Marshal(s)
}
