// Package signature holds the Signature Table: the closed, ordered set of
// methods every Mapp implements. The table is plain data; the binding
// generator turns it into the guest, host, native and delegate bindings.
package signature

import (
	_ "embed"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Built-in exports present in every binding set. They cannot be declared
// in a table.
const (
	ExportInitialize = "initialize"
	ExportAPIVersion = "api_version"
)

//go:embed mapp.yaml
var defaultTable []byte

// Param is one positional parameter.
type Param struct {
	Name string `yaml:"name" validate:"required,camel_ident"`
	Type string `yaml:"type" validate:"required,go_type"`
}

// Method describes one exported method. An empty Returns means the method
// has no return value.
type Method struct {
	Name    string  `yaml:"name" validate:"required,snake_ident,ne=initialize,ne=api_version"`
	Doc     string  `yaml:"doc,omitempty"`
	Returns string  `yaml:"returns,omitempty" validate:"omitempty,go_type"`
	Params  []Param `yaml:"params,omitempty" validate:"unique=Name,dive"`
}

// Table is an ordered list of method descriptors. Order is significant: it is
// the order methods appear in every generated binding.
type Table struct {
	Imports []string `yaml:"imports,omitempty" validate:"unique,dive,required"`
	Methods []Method `yaml:"methods" validate:"min=1,unique=Name,dive"`
}

var (
	snakeIdent = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	camelIdent = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)

	// Identifiers the generated code uses for its own locals, receivers,
	// helpers and imported packages.
	reservedParams = map[string]struct{}{
		"ctx": {}, "err": {}, "args": {}, "text": {}, "out": {},
		"g": {}, "d": {}, "m": {}, "impl": {}, "result": {},
		"ptr": {}, "length": {}, "invoke": {}, "binder": {}, "invocation": {},
		"context": {}, "time": {}, "errors": {}, "fmt": {},
		"entities": {}, "plugin": {}, "wireformat": {}, "mapp": {},
	}

	// Go names already taken by hand-written methods of the types the
	// generated methods are attached to (host Guest, plugin Delegate) and by
	// the guest export helpers.
	reservedGoNames = map[string]struct{}{
		"APIVersion": {}, "Initialize": {}, "Close": {}, "Poisoned": {},
		"State": {}, "Names": {}, "Call": {},
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "snake_ident", func(fl validator.FieldLevel) bool {
		return snakeIdent.MatchString(fl.Field().String())
	})
	mustRegister(v, "camel_ident", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if _, reserved := reservedParams[name]; reserved {
			return false
		}
		return camelIdent.MatchString(name) && !token.IsKeyword(name)
	})
	mustRegister(v, "go_type", func(fl validator.FieldLevel) bool {
		expr, err := parser.ParseExpr(fl.Field().String())
		return err == nil && isTypeExpr(expr)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("signature: register %s: %v", tag, err))
	}
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse signature table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses the table stored in file.
func Load(file string) (*Table, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature table: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in Mapp table.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("signature: built-in table: %v", err))
	}
	return t
}

// Validate checks identifiers, uniqueness, reserved names, that every type
// parses as a Go type expression and that every package a type refers to is
// imported.
func (t *Table) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("signature table validation failed: %w", err)
	}

	imported := make(map[string]struct{}, len(t.Imports))
	for _, imp := range t.Imports {
		imported[path.Base(imp)] = struct{}{}
	}
	goNames := make(map[string]string, len(t.Methods))
	for _, m := range t.Methods {
		if _, reserved := reservedGoNames[m.GoName()]; reserved {
			return fmt.Errorf("signature table validation failed: method %q maps to the reserved Go name %s", m.Name, m.GoName())
		}
		if prev, dup := goNames[m.GoName()]; dup {
			return fmt.Errorf("signature table validation failed: methods %q and %q map to the same Go name %s", prev, m.Name, m.GoName())
		}
		goNames[m.GoName()] = m.Name

		for _, p := range m.Params {
			if _, shadows := imported[p.Name]; shadows {
				return fmt.Errorf("signature table validation failed: method %s: parameter %s shadows an imported package", m.Name, p.Name)
			}
		}
		for _, typ := range m.types() {
			for _, q := range Qualifiers(typ) {
				if _, ok := imported[q]; !ok {
					return fmt.Errorf("signature table validation failed: method %s: type %s uses package %q which is not imported", m.Name, typ, q)
				}
			}
		}
	}
	return nil
}

// Lookup returns the method with the given wire name.
func (t *Table) Lookup(name string) (Method, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Names returns the method wire names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Methods))
	for i, m := range t.Methods {
		names[i] = m.Name
	}
	return names
}

// GoName returns the exported Go identifier for the method.
func (m Method) GoName() string {
	return GoName(m.Name)
}

// HasResult reports whether the method returns a value.
func (m Method) HasResult() bool {
	return m.Returns != ""
}

func (m Method) types() []string {
	out := make([]string, 0, len(m.Params)+1)
	for _, p := range m.Params {
		out = append(out, p.Type)
	}
	if m.HasResult() {
		out = append(out, m.Returns)
	}
	return out
}

var initialisms = map[string]string{
	"api": "API",
	"id":  "ID",
	"io":  "IO",
	"url": "URL",
}

// GoName converts a snake_case wire name into an exported Go identifier.
func GoName(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		if up, ok := initialisms[part]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(e.X)
	case *ast.ArrayType:
		return isTypeExpr(e.Elt)
	case *ast.MapType:
		return isTypeExpr(e.Key) && isTypeExpr(e.Value)
	default:
		return false
	}
}

// Qualifiers returns the package names referenced by a Go type expression.
func Qualifiers(typ string) []string {
	expr, err := parser.ParseExpr(typ)
	if err != nil {
		return nil
	}
	var out []string
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				out = append(out, id.Name)
			}
		}
		return true
	})
	return out
}
