// Package text defines the position and range value types shared by the
// editing engine and the renderer.
//
// Position Types:
//
//   - Position: line and column, both 0-indexed; column is a byte offset
//     within the line
//   - Range: a half-open span [Start, End) of positions
//
// Both types are immutable values and safe for concurrent use.
package text
