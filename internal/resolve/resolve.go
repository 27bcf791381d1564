// Package resolve turns a parsed request target into an open, mapped
// file, the Go rendering of the original's do_request: concatenate doc
// root and target into a bounded path, stat it, reject anything not
// world-readable or that is a directory, then open, mmap, and close.
package resolve

import (
	"os"

	"golang.org/x/sys/unix"
)

// Code is the outcome of a resolution attempt.
type Code int

const (
	Found Code = iota
	NotFound
	Forbidden
	IsDirectory
)

// Result is the outcome of Resolve. Mapped is non-nil only when Code is
// Found and the file is non-empty; the caller owns it and must call
// Release exactly once, even on the empty-file case where it is nil.
type Result struct {
	Code   Code
	Path   string
	Size   int64
	Mapped []byte
}

// Func is the shape of Resolve and SafeResolve, so callers can select
// between them (e.g. via a -hardened flag) without an interface.
type Func func(docRoot string, target []byte, pathBuf []byte) (Result, error)

// Resolve concatenates docRoot and target into pathBuf (truncating
// rather than overflowing it), stats the result, and if it names a
// world-readable regular file, opens, mmaps, and closes it.
//
// This performs no canonicalization of target, so "../" segments in a
// request are followed as-is if the underlying filesystem permits it —
// the documented risk carried over from the original implementation.
// Use SafeResolve to opt into traversal rejection.
func Resolve(docRoot string, target []byte, pathBuf []byte) (Result, error) {
	n := copy(pathBuf, docRoot)
	n += copy(pathBuf[n:], target)
	if n >= len(pathBuf) {
		n = len(pathBuf) - 1
	}
	path := string(pathBuf[:n])

	fi, err := os.Stat(path)
	if err != nil {
		return Result{Code: NotFound}, nil
	}
	if fi.Mode().Perm()&0004 == 0 {
		return Result{Code: Forbidden}, nil
	}
	if fi.IsDir() {
		return Result{Code: IsDirectory}, nil
	}

	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return Result{Code: NotFound}, nil
	}
	defer f.Close()

	size := fi.Size()
	var mapped []byte
	if size > 0 {
		mapped, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{Code: Found, Path: path, Size: size, Mapped: mapped}, nil
}

// Release unmaps a mapping returned by Resolve. It is a no-op when
// mapped is nil, matching the original unmap()'s guard against a null
// mapping.
func Release(mapped []byte) error {
	if mapped == nil {
		return nil
	}
	return unix.Munmap(mapped)
}
