//go:build !linux

package scanner

// Default returns the scanner for this platform.
func Default() Scanner {
	return PS{}
}

// RequiredBinary names an external program the default scanner runs, if any.
func RequiredBinary() string {
	return PS{}.BinaryName()
}
