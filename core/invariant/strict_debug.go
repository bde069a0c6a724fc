//go:build debug

package invariant

const strict = true
