// Package config loads the channelsync TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/channelsync/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:3000"
//	api_token = ""
//	collection = ""
//	page_size = 24
//	log_file = "~/.local/state/channelsync/channelsync.log"
//	log_level = "info"
//	request_timeout_seconds = 10
//	retry_max = 4
//	max_in_flight = 4
//	refresh_seconds = 0
//	revalidate_on_move_failure = false
//	metrics_addr = ""
//
// Every field is optional. Tilde expansion is performed on paths. A
// refresh_seconds of 0 disables background revalidation; an empty
// metrics_addr disables the Prometheus endpoint.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parse errors. A missing file is not an error.
package config
