package osver

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Foundation
// #import <Foundation/Foundation.h>
//
// void getSystemVersion(int *major, int *minor, int *patch) {
//     @autoreleasepool {
//         NSOperatingSystemVersion version = [[NSProcessInfo processInfo] operatingSystemVersion];
//         *major = (int)version.majorVersion;
//         *minor = (int)version.minorVersion;
//         *patch = (int)version.patchVersion;
//     }
// }
import "C"

func systemVersion() Version {
	var major, minor, patch C.int
	C.getSystemVersion(&major, &minor, &patch)
	return Version{
		Major: int(major),
		Minor: int(minor),
		Patch: int(patch),
	}
}
