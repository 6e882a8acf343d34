package remote

import "github.com/five82/channelsync/internal/state"

// contentsResponse mirrors GET /v2/channels/{id}/contents.
type contentsResponse struct {
	Items []state.Item `json:"items"`
	Count int          `json:"count"`
}

// positionRequest is the body of PUT /v2/channels/{id}/items/{item}/position.
type positionRequest struct {
	Type     string `json:"type"`
	InsertAt int    `json:"insert_at"`
}
