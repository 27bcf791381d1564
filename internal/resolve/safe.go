package resolve

import (
	"path/filepath"
	"strings"
)

// SafeResolve behaves like Resolve but first canonicalizes target and
// rejects anything that would escape docRoot. It is an opt-in hardening
// extension: the default server behavior uses Resolve, preserving the
// original implementation's documented traversal risk unless a caller
// explicitly asks for SafeResolve instead.
func SafeResolve(docRoot string, target []byte, pathBuf []byte) (Result, error) {
	clean := filepath.Clean(strings.TrimLeft(string(target), "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return Result{Code: Forbidden}, nil
	}
	return Resolve(docRoot, []byte("/"+clean), pathBuf)
}
