package powermgmt

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit

#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/pwr_mgt/IOPMLib.h>
#include <stdlib.h>

// Expose the macro
const CFStringRef AssertionTypePreventSystemSleep = kIOPMAssertionTypePreventSystemSleep;
*/
import "C"

import (
	"unsafe"

	pkgerrors "github.com/pkg/errors"
)

type assertionID = C.IOPMAssertionID

func createAssertion(name, details string) (assertionID, error) {
	cname := C.CString(name)
	cdetail := C.CString(details)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cdetail))

	cfName := C.CFStringCreateWithCString(C.kCFAllocatorDefault, cname, C.kCFStringEncodingUTF8)
	cfDetails := C.CFStringCreateWithCString(C.kCFAllocatorDefault, cdetail, C.kCFStringEncodingUTF8)
	defer C.CFRelease(C.CFTypeRef(cfName))
	defer C.CFRelease(C.CFTypeRef(cfDetails))

	var id C.IOPMAssertionID
	status := C.IOPMAssertionCreateWithDescription(
		C.AssertionTypePreventSystemSleep,
		cfName,
		cfDetails,
		0,
		0,
		0,
		0,
		&id,
	)
	if status != C.kIOReturnSuccess {
		return 0, pkgerrors.Errorf("IOPMAssertionCreateWithDescription failed: 0x%x", uint32(status))
	}
	return id, nil
}

func releaseAssertion(id assertionID) error {
	if status := C.IOPMAssertionRelease(id); status != C.kIOReturnSuccess {
		return pkgerrors.Errorf("IOPMAssertionRelease failed: 0x%x", uint32(status))
	}
	return nil
}
