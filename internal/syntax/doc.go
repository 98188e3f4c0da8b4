// Package syntax provides token suppliers for the renderer.
//
// Three suppliers implement highlight.Supplier:
//
//   - Chroma tokenizes any language chroma has a lexer for.
//   - TreeSitter parses Go with tree-sitter and falls back to another
//     supplier for other languages.
//   - Lua runs a user script defining tokens(src, language).
//
// New selects one from configuration. Suppliers are safe for concurrent
// use; each serializes its own parser state.
package syntax
