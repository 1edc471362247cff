// Package guest runs a Mapp inside the sandboxed module.
//
// A plugin registers a factory from an init function and builds with
// GOOS=wasip1 GOARCH=wasm -buildmode=c-shared:
//
//	func init() {
//		guest.Register(func() *Spinner { return NewSpinner() })
//	}
//
//	func main() {}
//
// The generated export shims forward every call to the registered
// Dispatcher, which decodes the arguments, runs the method under the Guard
// and encodes the result. Any failure traps the module; the host sees an
// export error and stops using the guest.
package guest

//go:generate go run ../cmd/mappgen generate --mode guest --out bindings_gen.go
//go:generate go run ../cmd/mappgen generate --mode exports --out exports_gen.go
