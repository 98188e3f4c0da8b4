// Package config loads glyphcore settings.
//
// Settings are read in three layers, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (Load)
//  3. GLYPHCORE_* environment variables
//
// The merged result is checked by Validate before it is returned.
//
// A Watcher reloads the file when it changes on disk and hands the new
// Config to a callback, so the renderer can react to font changes without
// a restart.
//
// Example configuration file:
//
//	[editor]
//	max_paste_bytes = 10485760
//	undo_limit = 500
//
//	[renderer]
//	device = "offscreen"
//	frame_rate = 120
//	line_numbers = "relative"
//
//	[font]
//	family = "gomono"
//	size = 14.0
//
//	[syntax]
//	supplier = "chroma"
//	language = "go"
package config
