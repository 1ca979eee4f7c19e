package powersource

/*
#cgo LDFLAGS: -framework CoreFoundation -framework IOKit

#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/IOKitLib.h>
#include <stdlib.h>

enum {
    PROP_MISSING = 0,
    PROP_NUMBER  = 1,
    PROP_BOOL    = 2,
};

typedef struct {
    int       kind;
    long long number;
    int       flag;
} prop_value;

// Copies the property dictionary of the first entry of service_class once,
// then decodes each requested key on its own. Returns 0 on success,
// 1 if no entry matches, 2 if the dictionary cannot be copied.
static int snapshot_props(const char *service_class, char **keys, int n, prop_value *out) {
    io_service_t entry = IOServiceGetMatchingService(kIOMainPortDefault, IOServiceMatching(service_class));
    if (entry == IO_OBJECT_NULL) {
        return 1;
    }

    CFMutableDictionaryRef props = NULL;
    kern_return_t result = IORegistryEntryCreateCFProperties(entry, &props, kCFAllocatorDefault, 0);
    IOObjectRelease(entry);
    if (result != KERN_SUCCESS || props == NULL) {
        return 2;
    }

    for (int i = 0; i < n; i++) {
        out[i].kind = PROP_MISSING;

        CFStringRef key = CFStringCreateWithCString(NULL, keys[i], kCFStringEncodingUTF8);
        if (key == NULL) {
            continue;
        }
        CFTypeRef value = CFDictionaryGetValue(props, key);
        CFRelease(key);
        if (value == NULL) {
            continue;
        }

        if (CFGetTypeID(value) == CFNumberGetTypeID()) {
            if (CFNumberGetValue((CFNumberRef)value, kCFNumberSInt64Type, &out[i].number)) {
                out[i].kind = PROP_NUMBER;
            }
        } else if (CFGetTypeID(value) == CFBooleanGetTypeID()) {
            out[i].flag = CFBooleanGetValue((CFBooleanRef)value);
            out[i].kind = PROP_BOOL;
        }
    }

    CFRelease(props);
    return 0;
}
*/
import "C"

import (
	"unsafe"

	pkgerrors "github.com/pkg/errors"
)

type iokitRegistry struct{}

func newPlatformRegistry() Registry {
	return iokitRegistry{}
}

func (iokitRegistry) Snapshot(serviceClass string, keys []string) (Properties, error) {
	if len(keys) == 0 {
		return Properties{}, nil
	}

	cclass := C.CString(serviceClass)
	defer C.free(unsafe.Pointer(cclass))

	ckeys := (**C.char)(C.malloc(C.size_t(len(keys)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	defer C.free(unsafe.Pointer(ckeys))
	keyArr := unsafe.Slice(ckeys, len(keys))
	for i, k := range keys {
		keyArr[i] = C.CString(k)
	}
	defer func() {
		for _, p := range keyArr {
			C.free(unsafe.Pointer(p))
		}
	}()

	values := make([]C.prop_value, len(keys))
	switch C.snapshot_props(cclass, ckeys, C.int(len(keys)), &values[0]) {
	case 0:
	case 1:
		return nil, pkgerrors.Wrapf(ErrServiceNotFound, "class %s", serviceClass)
	default:
		return nil, pkgerrors.Wrapf(ErrSnapshot, "class %s", serviceClass)
	}

	props := Properties{}
	for i, v := range values {
		switch v.kind {
		case C.PROP_NUMBER:
			props[keys[i]] = int64(v.number)
		case C.PROP_BOOL:
			props[keys[i]] = v.flag != 0
		}
	}

	return props, nil
}
