// Package wazero adapts an instantiated wazero module to the raw export
// contract used by the host facade.
//
// Every table method is exported by the guest as
//
//	<method>(ptr, len i32) i64
//
// The adapter copies the argument text into memory obtained from the guest's
// allocate export, calls the method, unpacks the result (pointer in the high
// 32 bits, length in the low 32 bits), copies it out and hands both buffers
// back through deallocate. initialize and api_version take no arguments.
//
// # Basic Usage
//
//	mod, err := runtime.Instantiate(ctx, wasmBytes)
//	if err != nil {
//	    return err
//	}
//	exports := wazero.NewExports(mod, wazero.WithMaxResponseSize(4<<20))
//	text, err := exports.Call(ctx, "api_version", "")
package wazero
