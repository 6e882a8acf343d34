// Package logtail reads the tail of the channelsync log file for the TUI
// log pane.
//
// # Reading Log Files
//
// Read extracts the last maxLines from a file with a ring buffer:
//
//   - Scans the file sequentially (one pass)
//   - Uses O(maxLines) memory, not O(file size)
//   - Returns lines in chronological order
//
// Read returns nil, nil for a file that does not exist yet.
//
// # Parsing
//
// The log file is written by zerolog's ConsoleWriter without color:
//
//	21:01:05 INF page merged component=paging count=25 page=2
//
// Parse splits such a line into time, level, message and trailing fields
// so the UI can style each part. Lines that do not follow the format are
// returned unchanged in Line.Message.
package logtail
