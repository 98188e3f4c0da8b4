// Package glyph rasterizes characters and packs them into a texture atlas.
//
// A Cache maps a Key (character, font, size) to an Info describing where
// the glyph's coverage bitmap lives in the atlas texture and how to
// position it. Glyphs are placed by a shelf packer: left to right along a
// row, with a new row starting below the tallest glyph of the current one.
//
// When the atlas runs out of rows it doubles in size, up to a maximum.
// The old texture is copied into the new one and every cached UV rect is
// rescaled, so no glyph is rasterized again. At the maximum size the least
// recently used quarter of the glyphs is evicted and the atlas is rebuilt
// from scratch; the surviving entries are marked stale and rasterized again
// on their next lookup.
//
// Glyphs with no visible pixels, such as the space character, never enter
// the atlas. Lookup reports them with ok == false and an Info carrying only
// the advance.
//
// A Cache is safe for concurrent use.
package glyph
