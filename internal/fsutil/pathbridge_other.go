//go:build !windows

package fsutil

// ToNativePath and FromNativePath are identity functions on every platform
// except Windows, where paths are natively UTF-16 and the conversion in
// pathbridge_windows.go is not a no-op.
func ToNativePath(path string) string   { return path }
func FromNativePath(path string) string { return path }
