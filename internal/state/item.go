package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Connectable kinds accepted by the remote reorder and item endpoints.
const (
	KindBlock   = "BLOCK"
	KindChannel = "CHANNEL"
)

// TypeChannel is the type tag of items that are themselves collections.
const TypeChannel = "Channel"

// Item is an opaque reference to one entry of a collection. Only ID and
// Type take part in cache logic; Payload carries the full JSON object.
type Item struct {
	ID      string
	Type    string
	Payload json.RawMessage
}

// ItemKey identifies an item inside a collection.
type ItemKey struct {
	ID   string
	Type string
}

// Key returns the (id, type) pair of the item.
func (i Item) Key() ItemKey {
	return ItemKey{ID: i.ID, Type: i.Type}
}

// Resolved reports whether the item carries enough identity to be moved.
func (i *Item) Resolved() bool {
	return i != nil && i.ID != "" && i.Type != ""
}

// Title returns the display title found in the payload, if any.
func (i Item) Title() string {
	if len(i.Payload) == 0 {
		return ""
	}
	var fields struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(i.Payload, &fields); err != nil {
		return ""
	}
	if title := strings.TrimSpace(fields.Title); title != "" {
		return title
	}
	return strings.TrimSpace(fields.Name)
}

// ConnectableKind maps an item type tag to the kind used on the wire.
func ConnectableKind(typeTag string) string {
	if typeTag == TypeChannel {
		return KindChannel
	}
	return KindBlock
}

// UnmarshalJSON accepts numeric and string ids.
func (i *Item) UnmarshalJSON(data []byte) error {
	var head struct {
		ID       json.RawMessage `json:"id"`
		Type     string          `json:"type"`
		Typename string          `json:"__typename"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	id, err := decodeID(head.ID)
	if err != nil {
		return err
	}
	i.ID = id
	i.Type = head.Type
	if i.Type == "" {
		i.Type = head.Typename
	}
	i.Payload = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the original payload when present.
func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.Payload) > 0 {
		return i.Payload, nil
	}
	return json.Marshal(struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}{ID: i.ID, Type: i.Type})
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return "", fmt.Errorf("decode item id: %w", err)
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode item id: %w", err)
	}
	return n.String(), nil
}

// Page is one batch returned by the remote source.
type Page struct {
	Items []Item
	Count int
}

// Reorder asks the remote source to move an item. Position is 1-based and
// counted from the end of the collection.
type Reorder struct {
	CollectionID string
	ItemID       string
	Kind         string
	Position     int
}
