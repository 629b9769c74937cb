package nodes

import "errors"

// ErrStrideLen is returned by NewL0 when a stride is zero or would not
// fit the 32-bit counter/shift arithmetic used throughout this package.
// trie.Error and bitmap.Error both map this sentinel onto their own
// public error taxonomy (ErrStrideLen / ESLEN) rather than exposing it
// directly, so it stays unexported-package-internal in spirit even
// though Go requires it to be comparable across package boundaries.
var ErrStrideLen = errors.New("nodes: stride length out of range")
