// Package conv provides checked integer conversions for allocator size
// arithmetic.
//
// Sizes come from callers (pool and arena capacities, element counts) and
// from the file system (stat sizes). These helpers fail with ErrOverflow
// instead of silently wrapping.
package conv
