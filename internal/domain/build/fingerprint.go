package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint keys a compiled document. Any input hash change produces a
// different RenderHash.
type Fingerprint struct {
	ContentHash string
	AssetHash   string
	OptionsHash string
	RenderHash  string
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte{0})
	h.Write([]byte(f.AssetHash))
	h.Write([]byte{0})
	h.Write([]byte(f.OptionsHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func HashString(s string) string {
	return HashBytes([]byte(s))
}
