//go:build !debug

package invariant

const strict = false
