//go:build codecdebug

package codec

// Verbose reports whether descriptions carry the long diagnostic text.
const Verbose = true

// Description returns verbose when built with the codecdebug tag, otherwise short.
func Description(verbose, short string) string {
	return verbose
}
