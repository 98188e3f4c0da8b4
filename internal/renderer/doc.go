// Package renderer turns a document snapshot into frames.
//
// A FrameProducer is selected once by Open and never switched:
//
//	┌──────────────────────────────────────────────┐
//	│                 FrameProducer                │
//	├──────────────────────┬───────────────────────┤
//	│    AtlasRenderer     │     TextRenderer      │
//	│ glyph.Cache + gpu    │ backend cells (tcell) │
//	├──────────────────────┴───────────────────────┤
//	│    layout.Cache │ highlight.Index │ Viewport │
//	└──────────────────────────────────────────────┘
//
// AtlasRenderer emits three ordered layers per frame (selection, text,
// cursor) as quads sampling the glyph atlas and submits them without
// waiting for the device. A frame whose drawable or submission fails is
// skipped and counted; the next tick renders normally.
//
// TextRenderer is the software path used when no device can be opened. It
// draws each visible line as cells on a backend.Backend.
//
// Both paths take line-number labels from gutter.Formatter and selection
// extents from selection.OnLine, so they agree column for column.
//
// Usage:
//
//	p, err := renderer.Open(renderer.ConfigFrom(cfg), renderer.Deps{Backend: term})
//	...
//	p.Render(renderer.FrameInput{Viewport: vp, Snapshot: store.Snapshot()})
package renderer
