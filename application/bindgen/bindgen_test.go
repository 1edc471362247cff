package bindgen_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mapp "github.com/metaview-dev/mapp-sdk"
	"github.com/metaview-dev/mapp-sdk/application/bindgen"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
)

func parse(t *testing.T, src []byte) *ast.File {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "gen.go", src, parser.ParseComments)
	require.NoError(t, err, string(src))
	return file
}

func importPaths(file *ast.File) []string {
	var out []string
	for _, imp := range file.Imports {
		p, _ := strconv.Unquote(imp.Path.Value)
		out = append(out, p)
	}
	return out
}

// funcNames returns top-level function and method names in source order.
func funcNames(file *ast.File) []string {
	var out []string
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			out = append(out, fn.Name.Name)
		}
	}
	return out
}

func interfaceMethods(t *testing.T, file *ast.File, name string) []string {
	t.Helper()
	obj := file.Scope.Lookup(name)
	require.NotNil(t, obj, "type %s", name)
	spec := obj.Decl.(*ast.TypeSpec)
	iface, ok := spec.Type.(*ast.InterfaceType)
	require.True(t, ok)

	var out []string
	for _, field := range iface.Methods.List {
		out = append(out, field.Names[0].Name)
	}
	return out
}

var goNames = []string{"Update", "SendCommand", "ReceiveCommandResponse", "FlushIO", "ReceiveEvent"}

func TestGenerate_AllModesParse(t *testing.T) {
	table := signature.Default()

	for _, mode := range bindgen.Modes() {
		t.Run(string(mode), func(t *testing.T) {
			src, err := bindgen.Generate(table, mode)
			require.NoError(t, err)

			assert.True(t, strings.Contains(string(src), "// Code generated by mappgen "+string(mode)+". DO NOT EDIT."))
			file := parse(t, src)
			assert.Equal(t, mode.Package(), file.Name.Name)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	table := signature.Default()
	for _, mode := range bindgen.Modes() {
		first, err := bindgen.Generate(table, mode)
		require.NoError(t, err)
		second, err := bindgen.Generate(table, mode)
		require.NoError(t, err)
		assert.Equal(t, first, second, mode)
	}
}

func TestGenerate_Native(t *testing.T) {
	src, err := bindgen.Generate(signature.Default(), bindgen.ModeNative, bindgen.WithVersion("9.9.9"))
	require.NoError(t, err)
	file := parse(t, src)

	assert.Equal(t, append([]string{"APIVersion"}, goNames...), interfaceMethods(t, file, "Mapp"))
	assert.Equal(t, append([]string{"APIVersion"}, goNames...), interfaceMethods(t, file, "Client"))
	assert.Contains(t, string(src), `return "9.9.9"`)
	assert.Contains(t, string(src), "SendCommand() *entities.Command")
	assert.Contains(t, string(src), "SendCommand(ctx context.Context) (*entities.Command, error)")
	assert.Contains(t, string(src), "Update(ctx context.Context, elapsed time.Duration) error")
	assert.ElementsMatch(t, []string{
		"context",
		"time",
		"github.com/metaview-dev/mapp-sdk/domain/entities",
	}, importPaths(file))
}

func TestGenerate_NativeStampsSDKVersion(t *testing.T) {
	src, err := bindgen.Generate(signature.Default(), bindgen.ModeNative)
	require.NoError(t, err)
	assert.Contains(t, string(src), strconv.Quote(mapp.Version))
}

func TestGenerate_Guest(t *testing.T) {
	src, err := bindgen.Generate(signature.Default(), bindgen.ModeGuest)
	require.NoError(t, err)
	file := parse(t, src)

	text := string(src)
	last := -1
	for _, name := range signature.Default().Names() {
		idx := strings.Index(text, strconv.Quote(name)+":")
		require.Greater(t, idx, last, "binder for %s out of order", name)
		last = idx
	}
	assert.Contains(t, text, "wireformat.DecodeArgs(text, &elapsed)")
	assert.Contains(t, text, "wireformat.DecodeArgs(text)")

	// Return types never appear in guest bindings, so time and entities are
	// only imported for parameters.
	assert.ElementsMatch(t, []string{
		"time",
		"github.com/metaview-dev/mapp-sdk/application/plugin",
		"github.com/metaview-dev/mapp-sdk/domain/entities",
		"github.com/metaview-dev/mapp-sdk/wireformat",
	}, importPaths(file))
}

func TestGenerate_Exports(t *testing.T) {
	src, err := bindgen.Generate(signature.Default(), bindgen.ModeExports)
	require.NoError(t, err)
	file := parse(t, src)

	assert.True(t, strings.HasPrefix(string(src), "//go:build wasip1\n"))
	assert.Empty(t, file.Imports)

	want := []string{"exportInitialize", "exportAPIVersion"}
	for _, name := range goNames {
		want = append(want, "export"+name)
	}
	assert.Equal(t, want, funcNames(file))
	assert.Contains(t, string(src), "//go:wasmexport receive_command_response\n")
}

func TestGenerate_HostAndDelegate(t *testing.T) {
	table := signature.Default()

	src, err := bindgen.Generate(table, bindgen.ModeHost)
	require.NoError(t, err)
	assert.Equal(t, goNames, funcNames(parse(t, src)))
	assert.Contains(t, string(src), `invoke[*entities.Command](ctx, g, "send_command")`)
	assert.Contains(t, string(src), `invoke[struct{}](ctx, g, "update", elapsed)`)

	src, err = bindgen.Generate(table, bindgen.ModeDelegate)
	require.NoError(t, err)
	assert.Equal(t, append([]string{"APIVersion"}, goNames...), funcNames(parse(t, src)))
}

func TestGenerate_Options(t *testing.T) {
	src, err := bindgen.Generate(signature.Default(), bindgen.ModeHost,
		bindgen.WithPackage("myhost"), bindgen.WithBuildTag("!wasip1"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(src), "//go:build !wasip1\n"))
	assert.Equal(t, "myhost", parse(t, src).Name.Name)
}

func TestGenerate_CustomTable(t *testing.T) {
	table, err := signature.Parse([]byte(`
methods:
  - name: add
    params:
      - name: a
        type: int
      - name: b
        type: int
    returns: int
`))
	require.NoError(t, err)

	src, err := bindgen.Generate(table, bindgen.ModeGuest)
	require.NoError(t, err)
	assert.Contains(t, string(src), "wireformat.DecodeArgs(text, &a, &b)")
	assert.Contains(t, string(src), "return m.Add(a, b)")

	src, err = bindgen.Generate(table, bindgen.ModeHost)
	require.NoError(t, err)
	assert.Contains(t, string(src), `invoke[int](ctx, g, "add", a, b)`)
	assert.NotContains(t, string(src), "entities")
}

func TestGenerate_Errors(t *testing.T) {
	_, err := bindgen.Generate(signature.Default(), bindgen.Mode("python"))
	assert.ErrorContains(t, err, "unknown binding mode")

	_, err = bindgen.Generate(nil, bindgen.ModeNative)
	assert.Error(t, err)

	bad := &signature.Table{Methods: []signature.Method{{Name: "initialize"}}}
	_, err = bindgen.Generate(bad, bindgen.ModeGuest)
	assert.ErrorContains(t, err, "validation failed")
}

func TestParseMode(t *testing.T) {
	for _, mode := range bindgen.Modes() {
		got, err := bindgen.ParseMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	_, err := bindgen.ParseMode("rust")
	assert.Error(t, err)
}

// The checked-in generated files must be exactly what the generator emits
// today.
func TestCheckedInBindingsUpToDate(t *testing.T) {
	files := map[bindgen.Mode]string{
		bindgen.ModeNative:   "../plugin/mapp_gen.go",
		bindgen.ModeDelegate: "../plugin/delegate_gen.go",
		bindgen.ModeGuest:    "../../guest/bindings_gen.go",
		bindgen.ModeExports:  "../../guest/exports_gen.go",
		bindgen.ModeHost:     "../../host/guest_gen.go",
	}

	for mode, rel := range files {
		t.Run(string(mode), func(t *testing.T) {
			onDisk, err := os.ReadFile(filepath.FromSlash(rel))
			require.NoError(t, err)
			want, err := bindgen.Generate(signature.Default(), mode)
			require.NoError(t, err)

			assert.Equal(t, string(want), string(onDisk), "%s is stale; run go generate", rel)

			gotFile, wantFile := parse(t, onDisk), parse(t, want)
			assert.Equal(t, funcNames(wantFile), funcNames(gotFile))
			assert.ElementsMatch(t, importPaths(wantFile), importPaths(gotFile))
		})
	}
}
