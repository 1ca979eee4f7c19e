// Command libbattcycle builds the battery and SMC functions as a C library:
//
//	go build -buildmode=c-shared -o libbattcycle.dylib ./cmd/libbattcycle
//
// Callers own every buffer. Nothing allocated here is returned.
package main

/*
#include <stdbool.h>

typedef struct {
    int  current_capacity;
    int  max_capacity;
    int  design_capacity;
    int  cycle_count;
    bool is_charging;
    bool is_plugged_in;
} BatteryInfo;
*/
import "C"

import (
	"os"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/battcycle/battcycle/pkg/powersource"
	"github.com/battcycle/battcycle/pkg/smc"
)

func init() {
	// Stay quiet inside the host process unless asked.
	logrus.SetLevel(logrus.WarnLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("BATTCYCLE_LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

//export FetchBatteryInfo
func FetchBatteryInfo() C.BatteryInfo {
	info := powersource.FetchBatteryInfo().Legacy()
	return C.BatteryInfo{
		current_capacity: C.int(info.CurrentCapacity),
		max_capacity:     C.int(info.MaxCapacity),
		design_capacity:  C.int(info.DesignCapacity),
		cycle_count:      C.int(info.CycleCount),
		is_charging:      C.bool(info.IsCharging),
		is_plugged_in:    C.bool(info.IsPluggedIn),
	}
}

//export SmcReadKey
func SmcReadKey(key *C.char, value *C.char, valueSize C.int) C.int {
	if key == nil || (value == nil && valueSize > 0) || valueSize < 0 {
		return -1
	}

	var buf []byte
	if valueSize > 0 {
		buf = unsafe.Slice((*byte)(unsafe.Pointer(value)), int(valueSize))
	}

	_, err := smc.Default().ReadKey(C.GoString(key), buf)
	if err != nil {
		logrus.WithError(err).Debug("SmcReadKey failed")
	}
	return C.int(smc.Status(err))
}

//export SmcWriteKey
func SmcWriteKey(key *C.char, value *C.char) C.int {
	if key == nil || value == nil {
		return -1
	}

	err := smc.Default().WriteKey(C.GoString(key), C.GoString(value))
	if err != nil {
		logrus.WithError(err).Debug("SmcWriteKey failed")
	}
	return C.int(smc.Status(err))
}

func main() {}
