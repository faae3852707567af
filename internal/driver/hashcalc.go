package driver

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 value.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// combineDigest: H(content || part1 || 0 || part2 || 0 ...).
func combineDigest(content Digest, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// verdictKey identifies a verdict for normalised content under the options
// that influence it.
func verdictKey(content Digest, opts Options) Digest {
	mode := "first"
	if opts.All {
		mode = "all"
	}
	parse := "guard"
	if opts.Parse {
		parse = "parse"
	}
	return combineDigest(content, opts.Engine.String(), mode, parse)
}
