// Package remote provides the RemoteSource implementations used by the
// paging package.
//
// # Overview
//
// Client talks to the collection HTTP API. MemorySource serves collections
// from memory for demo mode and tests. Both satisfy paging.Source.
//
// # API Endpoints
//
//   - GET /v2/channels/{id}/contents: one page of a collection view
//   - GET /v2/items/{id}?type=KIND: the current content of one item
//   - PUT /v2/channels/{id}/items/{item}/position: move an item
//
// Contents requests carry page, per, sort, direction, type and user_id
// query parameters derived from the state.Identity. Responses have the
// shape {"items":[...],"count":N}; item ids may be JSON numbers or strings.
//
// The position body is {"type":"BLOCK","insert_at":N}, where insert_at is
// 1-based and counted from the end of the collection.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: channelsync/<version>
//   - Send Authorization: Bearer <token> when a token is configured
//   - Retry transient failures through go-retryablehttp
//   - Pass through a gobreaker circuit breaker
//
// # Error Handling
//
// Errors are wrapped with fmt.Errorf. A 404 wraps ErrNotFound; a rejected
// call while the breaker is open wraps ErrCircuitOpen. Example messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /v2/channels/c/contents returned status 500"
//   - "decode response: unexpected end of JSON input"
package remote
