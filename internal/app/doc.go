// Package app is the composition root of channelsync.
//
// # Overview
//
// Open turns configuration, preferences and command-line overrides into a
// Session: a logger, a paging.Source (the HTTP client or, in demo mode, an
// in-memory collection), the shared state.Store, and the paging.Controller
// and paging.Mutator for one collection identity. The CLI commands use a
// Session directly; Run adds the background poller, the optional metrics
// endpoint and the Bubble Tea browser on top.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> Open()              config, prefs, logger, source, store
//	       ├─────> Session.Serve()     /metrics when metrics_addr is set
//	       ├─────> StartPoller()       background revalidation
//	       ├─────> FetchPage(1)        populate before the UI starts
//	       └─────> ui.Run()            browser (blocks)
//
// # Polling Behavior
//
// With refresh_seconds set, the poller refetches every page the view has
// requested, two at a time. Each failed page bumps the snapshot's failure
// counter and the next wait doubles, up to 30 seconds. A successful merge
// resets the counter and the cadence.
//
// # Error Handling
//
// Fatal errors (returned from Open or Run):
//   - configuration that cannot be parsed
//   - no collection named by flags or config
//   - an unusable api_url or log file
//
// Recoverable errors (logged, recorded on the snapshot):
//   - page fetch failures, including the initial one
//   - failed reorders and item refreshes
package app
