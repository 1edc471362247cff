package bindgen

const headerTemplate = `
{{- if .BuildTag}}//go:build {{.BuildTag}}

{{end -}}
// Code generated by mappgen {{.Mode}}. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{- range $i, $group := .Imports}}
{{- if $i}}
{{end}}
{{- range $group}}
	{{quote .}}
{{- end}}
{{- end}}
)
{{end}}
`

const nativeTemplate = headerTemplate + `
// Mapp is implemented by every plugin. Embed Versioned for the default
// APIVersion.
type Mapp interface {
	// APIVersion returns the binding version the plugin was built against.
	APIVersion() string
{{range .Methods}}
{{comment . "is part of the Mapp contract." | indent}}
	{{.GoName}}({{params . ""}}){{if .HasResult}} {{.Returns}}{{end}}
{{- end}}
}

// Client is the host-side view of a Mapp. Every call may fail with one of
// the binding errors in domain/errors.
type Client interface {
	// APIVersion returns the binding version reported by the plugin.
	APIVersion(ctx context.Context) (string, error)
{{range .Methods}}
{{comment . "is part of the Mapp contract." | indent}}
	{{.GoName}}({{params . "ctx"}}) {{if .HasResult}}({{.Returns}}, error){{else}}error{{end}}
{{- end}}
}

// Versioned provides the default APIVersion. Embed it in plugin types.
type Versioned struct{}

// APIVersion returns the version of the generator that emitted this file.
func (Versioned) APIVersion() string {
	return {{quote .Version}}
}
`

const delegateTemplate = headerTemplate + `
// APIVersion implements Client.
func (d *Delegate) APIVersion(_ context.Context) (out string, err error) {
	err = d.do("api_version", func(impl Mapp) {
		out = impl.APIVersion()
	})
	return out, err
}
{{range .Methods}}
// {{.GoName}} implements Client.
func (d *Delegate) {{.GoName}}({{params . "_"}}) {{if .HasResult}}(out {{.Returns}}, err error){{else}}error{{end}} {
{{- if .HasResult}}
	err = d.do({{quote .Name}}, func(impl Mapp) {
		out = impl.{{.GoName}}({{args .}})
	})
	return out, err
{{- else}}
	return d.do({{quote .Name}}, func(impl Mapp) {
		impl.{{.GoName}}({{args .}})
	})
{{- end}}
}
{{end}}
`

const guestTemplate = headerTemplate + `
// methodOrder lists the table methods in declaration order.
var methodOrder = []string{
{{- range .Methods}}
	{{quote .Name}},
{{- end}}
}

// binders decode the positional arguments of each table method.
var binders = map[string]binder{
{{- range .Methods}}
	{{quote .Name}}: func(text string) (invocation, error) {
{{- range .Params}}
		var {{.Name}} {{.Type}}
{{- end}}
		if err := wireformat.DecodeArgs(text{{range .Params}}, &{{.Name}}{{end}}); err != nil {
			return nil, err
		}
		return func(m plugin.Mapp) any {
{{- if .HasResult}}
			return m.{{.GoName}}({{args .}})
{{- else}}
			m.{{.GoName}}({{args .}})
			return nil
{{- end}}
		}, nil
	},
{{- end}}
}
`

const exportsTemplate = headerTemplate + `
//go:wasmexport initialize
func exportInitialize() {
	mustInitialize()
}

//go:wasmexport api_version
func exportAPIVersion() uint64 {
	return exportCall("api_version", 0, 0)
}
{{range .Methods}}
//go:wasmexport {{.Name}}
func export{{.GoName}}(ptr, length uint32) uint64 {
	return exportCall({{quote .Name}}, ptr, length)
}
{{end}}
`

const hostTemplate = headerTemplate + `
{{- range .Methods}}
{{comment . "calls the guest export of the same name."}}
func (g *Guest) {{.GoName}}({{params . "ctx"}}) {{if .HasResult}}({{.Returns}}, error){{else}}error{{end}} {
{{- if .HasResult}}
	return invoke[{{.Returns}}](ctx, g, {{quote .Name}}{{range .Params}}, {{.Name}}{{end}})
{{- else}}
	_, err := invoke[struct{}](ctx, g, {{quote .Name}}{{range .Params}}, {{.Name}}{{end}})
	return err
{{- end}}
}
{{end}}
`
