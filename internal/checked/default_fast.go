//go:build !checked

package checked

// Enabled reports whether the checked build profile is active.
const Enabled = false
