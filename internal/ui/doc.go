// Package ui provides the channelsync terminal browser, built on Bubble Tea.
//
// # Overview
//
// The browser shows one collection identity through a paging.Controller
// and edits it through a paging.Mutator. Rows are drawn from the cached
// snapshot; slots whose page has not arrived render as placeholders, and the
// pages covering the visible rows (plus the next one) are requested as the
// cursor moves.
//
// # Package Structure
//
//   - app.go: Model, Update loop, tick handling and Run
//   - browser.go: list rendering, navigation and collection edits
//   - header.go: status bar and command hints
//   - logs.go: log file view backed by logtail
//   - help.go, keys.go: help overlay and key map
//   - theme.go, style_helpers.go: palettes and background-safe rendering
//
// # Key Bindings
//
//   - j/k, g/G, ctrl+d/ctrl+u: Navigate
//   - d: Remove the item from the cached view
//   - J/K: Move the item down/up one position
//   - t/b: Move the item to the top/bottom
//   - r: Refresh the item in place
//   - R: Refresh every loaded page
//   - a: Reload from the first page
//   - s/o/f: Cycle sort, direction and type filter
//   - l: Log view, Space toggles follow, esc returns
//   - T: Cycle theme
//   - q or Ctrl+C: Exit
//
// Sort, direction, type filter and theme are saved to prefs.toml so the
// next session reopens the same view.
package ui
