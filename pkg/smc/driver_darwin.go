package smc

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation

#include <IOKit/IOKitLib.h>
#include <mach/mach.h>
#include <stdlib.h>

static kern_return_t smc_open(io_connect_t *conn) {
    io_service_t service = IOServiceGetMatchingService(kIOMainPortDefault, IOServiceMatching("AppleSMC"));
    if (service == IO_OBJECT_NULL) {
        return kIOReturnNotFound;
    }

    kern_return_t result = IOServiceOpen(service, mach_task_self(), 0, conn);
    IOObjectRelease(service);
    return result;
}

static kern_return_t smc_call(io_connect_t conn, uint32_t selector, void *in, void *out, size_t size) {
    size_t out_size = size;
    return IOConnectCallStructMethod(conn, selector, in, size, out, &out_size);
}

static kern_return_t smc_close(io_connect_t conn) {
    return IOServiceClose(conn);
}
*/
import "C"

import (
	"unsafe"

	pkgerrors "github.com/pkg/errors"
)

type iokitDriver struct{}

func newPlatformDriver() Driver {
	return iokitDriver{}
}

func (iokitDriver) Open() (Conn, error) {
	var conn C.io_connect_t
	if ret := C.smc_open(&conn); ret != C.KERN_SUCCESS {
		return nil, pkgerrors.Wrapf(ErrOpen, "IOServiceOpen(AppleSMC) returned 0x%x", uint32(ret))
	}
	return &iokitConn{conn: conn}, nil
}

type iokitConn struct {
	conn C.io_connect_t
}

func (c *iokitConn) Call(in *KeyData) (*KeyData, error) {
	inBuf, err := in.MarshalBinary()
	if err != nil {
		return nil, err
	}

	// Both buffers live in C memory for the duration of the call.
	cin := C.CBytes(inBuf)
	defer C.free(cin)
	cout := C.calloc(1, C.size_t(KeyDataSize))
	defer C.free(cout)

	ret := C.smc_call(c.conn, C.uint32_t(KernelIndexSMC), cin, cout, C.size_t(KeyDataSize))
	if ret != C.KERN_SUCCESS {
		return nil, pkgerrors.Wrapf(ErrCall, "IOConnectCallStructMethod returned 0x%x", uint32(ret))
	}

	out := &KeyData{}
	if err := out.UnmarshalBinary(C.GoBytes(unsafe.Pointer(cout), C.int(KeyDataSize))); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *iokitConn) Close() error {
	if ret := C.smc_close(c.conn); ret != C.KERN_SUCCESS {
		return pkgerrors.Errorf("IOServiceClose returned 0x%x", uint32(ret))
	}
	return nil
}
