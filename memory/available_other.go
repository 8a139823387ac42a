//go:build !linux

package memory

func systemFree() (int64, bool) {
	return 0, false
}
