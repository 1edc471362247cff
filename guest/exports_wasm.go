//go:build wasip1

package guest

import (
	"context"

	"github.com/metaview-dev/mapp-sdk/domain/errors"
	"github.com/metaview-dev/mapp-sdk/internal/abi"
)

func registered() *Dispatcher {
	d := active.Load()
	if d == nil {
		panic("guest: no Mapp registered; call guest.Register from an init function")
	}
	return d
}

// mustInitialize traps the module if the instance cannot be built.
func mustInitialize() {
	if err := registered().Initialize(); err != nil {
		panic(errors.ToErrorDetail(err).Error())
	}
}

// exportCall serves one export. Arguments are read from memory the host
// allocated; the result is written to fresh memory the host deallocates.
// Any failure traps the module.
func exportCall(name string, ptr, length uint32) uint64 {
	args := abi.BytesFromPtr(ptr, length)
	text, err := registered().Call(context.Background(), name, string(args))
	if err != nil {
		panic(errors.ToErrorDetail(err).Error())
	}
	return abi.PtrFromBytes([]byte(text))
}
