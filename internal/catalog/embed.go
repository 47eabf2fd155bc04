package catalog

import _ "embed"

// demo is the seed replayed when no seed file is configured.
//
//go:embed demo.json
var demo []byte

// Default returns the embedded demo seed.
func Default() (*Seed, error) {
	return Parse(demo)
}
