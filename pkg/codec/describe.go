//go:build !codecdebug

package codec

// Verbose reports whether descriptions carry the long diagnostic text.
// Build with the codecdebug tag to enable it.
const Verbose = false

// Description returns verbose when built with the codecdebug tag, otherwise short.
func Description(verbose, short string) string {
	return short
}
