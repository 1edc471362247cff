// Package bindgen emits the Go bindings for a Signature Table. Every mode is
// rendered from the same table, so method names, parameter order and types
// agree across the guest exports, the host facade, the native interface and
// the in-process delegate.
package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strings"
	"text/template"

	mapp "github.com/metaview-dev/mapp-sdk"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
)

// Mode selects which binding set to emit.
type Mode string

const (
	// ModeNative emits the Mapp and Client interfaces.
	ModeNative Mode = "native"
	// ModeGuest emits the guest invoker table.
	ModeGuest Mode = "guest"
	// ModeExports emits the wasip1 export shims.
	ModeExports Mode = "exports"
	// ModeHost emits the host Guest facade methods.
	ModeHost Mode = "host"
	// ModeDelegate emits the in-process Delegate methods.
	ModeDelegate Mode = "delegate"
)

// Modes lists every mode in generation order.
func Modes() []Mode {
	return []Mode{ModeNative, ModeDelegate, ModeGuest, ModeExports, ModeHost}
}

// SDKModule is the import path prefix of the SDK packages referenced by
// generated code.
const SDKModule = "github.com/metaview-dev/mapp-sdk"

type modeSpec struct {
	pkg      string
	tag      string
	imports  []string
	template string
	// whether parameter and return types appear in the output
	params, returns bool
}

var modes = map[Mode]modeSpec{
	ModeNative: {
		pkg:      "plugin",
		imports:  []string{"context"},
		template: nativeTemplate,
		params:   true,
		returns:  true,
	},
	ModeDelegate: {
		pkg:      "plugin",
		imports:  []string{"context"},
		template: delegateTemplate,
		params:   true,
		returns:  true,
	},
	ModeGuest: {
		pkg:      "guest",
		imports:  []string{SDKModule + "/application/plugin", SDKModule + "/wireformat"},
		template: guestTemplate,
		params:   true,
	},
	ModeExports: {
		pkg:      "guest",
		tag:      "wasip1",
		template: exportsTemplate,
	},
	ModeHost: {
		pkg:      "host",
		imports:  []string{"context"},
		template: hostTemplate,
		params:   true,
		returns:  true,
	},
}

// ParseMode converts a mode name.
func ParseMode(name string) (Mode, error) {
	m := Mode(name)
	if _, ok := modes[m]; !ok {
		return "", fmt.Errorf("unknown binding mode %q", name)
	}
	return m, nil
}

// FileName returns the conventional output file for the mode.
func (m Mode) FileName() string {
	switch m {
	case ModeNative:
		return "mapp_gen.go"
	case ModeGuest:
		return "bindings_gen.go"
	default:
		return string(m) + "_gen.go"
	}
}

// Package returns the default package name of the mode's output.
func (m Mode) Package() string {
	return modes[m].pkg
}

type config struct {
	pkg      string
	buildTag string
	version  string
}

// Option configures Generate.
type Option func(*config)

// WithPackage overrides the package clause of the output.
func WithPackage(name string) Option {
	return func(c *config) {
		c.pkg = name
	}
}

// WithBuildTag overrides the build constraint of the output.
func WithBuildTag(expr string) Option {
	return func(c *config) {
		c.buildTag = expr
	}
}

// WithVersion overrides the binding version stamped into native output.
// Defaults to the SDK version.
func WithVersion(v string) Option {
	return func(c *config) {
		c.version = v
	}
}

// Generate renders the bindings for mode. The output is gofmt-formatted and
// depends only on the table and options, so regenerating is byte-stable.
func Generate(table *signature.Table, mode Mode, opts ...Option) ([]byte, error) {
	spec, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown binding mode %q", mode)
	}
	if table == nil {
		return nil, fmt.Errorf("nil signature table")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	cfg := config{pkg: spec.pkg, buildTag: spec.tag, version: mapp.Version}
	for _, opt := range opts {
		opt(&cfg)
	}

	tmpl, err := template.New(string(mode)).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(spec.template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", mode, err)
	}

	data := fileData{
		Mode:     string(mode),
		Package:  cfg.pkg,
		BuildTag: cfg.buildTag,
		Version:  cfg.version,
		Imports:  importsFor(table, spec),
		Methods:  table.Methods,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute %s template: %w", mode, err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generated %s bindings do not parse: %w", mode, err)
	}
	return out, nil
}

type fileData struct {
	Mode     string
	Package  string
	BuildTag string
	Version  string
	Imports  [][]string
	Methods  []signature.Method
}

// importsFor returns the import groups (standard library first) needed by the
// types that appear in the mode's output.
func importsFor(table *signature.Table, spec modeSpec) [][]string {
	byName := make(map[string]string, len(table.Imports))
	for _, imp := range table.Imports {
		byName[path.Base(imp)] = imp
	}

	used := make(map[string]struct{})
	for _, imp := range spec.imports {
		used[imp] = struct{}{}
	}
	for _, m := range table.Methods {
		var types []string
		if spec.params {
			for _, p := range m.Params {
				types = append(types, p.Type)
			}
		}
		if spec.returns && m.HasResult() {
			types = append(types, m.Returns)
		}
		for _, typ := range types {
			for _, q := range signature.Qualifiers(typ) {
				if imp, ok := byName[q]; ok {
					used[imp] = struct{}{}
				}
			}
		}
	}

	var std, other []string
	for imp := range used {
		first, _, _ := strings.Cut(imp, "/")
		if strings.Contains(first, ".") {
			other = append(other, imp)
		} else {
			std = append(std, imp)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	var groups [][]string
	for _, g := range [][]string{std, other} {
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

var funcs = template.FuncMap{
	"comment": comment,
	"indent":  indent,
	"params":  params,
	"args":    args,
	"quote":   func(s string) string { return fmt.Sprintf("%q", s) },
}

// comment renders doc as a // comment block, or a fallback naming the method.
func comment(m signature.Method, fallback string) string {
	doc := strings.TrimSpace(m.Doc)
	if doc == "" {
		doc = m.GoName() + " " + fallback
	}
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("// "+strings.TrimSpace(line), " ")
	}
	return strings.Join(lines, "\n")
}

func indent(text string) string {
	return "\t" + strings.ReplaceAll(text, "\n", "\n\t")
}

// params renders "a T, b U" with an optional leading context parameter.
func params(m signature.Method, ctx string) string {
	parts := make([]string, 0, len(m.Params)+1)
	if ctx != "" {
		parts = append(parts, ctx+" context.Context")
	}
	for _, p := range m.Params {
		parts = append(parts, p.Name+" "+p.Type)
	}
	return strings.Join(parts, ", ")
}

func args(m signature.Method) string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
