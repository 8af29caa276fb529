package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"webdesk/pkg/wm"
)

// ErrUnknownContentKind is returned when a payload carries an unknown kind tag.
var ErrUnknownContentKind = errors.New("api: unknown content kind")

// EncodeContent renders a window payload as a JSON object tagged with its
// variant: {"kind":"text","name":...}. A nil payload encodes as nil.
func EncodeContent(c wm.Content) (json.RawMessage, error) {
	if c == nil {
		return nil, nil
	}

	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", c.ContentKind(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s content: %w", c.ContentKind(), err)
	}
	kind, err := json.Marshal(c.ContentKind())
	if err != nil {
		return nil, err
	}
	fields["kind"] = kind
	return json.Marshal(fields)
}

// DecodeContent parses a tagged payload. Empty input and null decode to a
// nil payload.
func DecodeContent(data json.RawMessage) (wm.Content, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var head struct {
		Kind wm.ContentKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}

	switch head.Kind {
	case wm.ContentFinder:
		return decodeVariant[wm.FinderContent](data)
	case wm.ContentText:
		return decodeVariant[wm.TextContent](data)
	case wm.ContentImage:
		return decodeVariant[wm.ImageContent](data)
	case wm.ContentLink:
		return decodeVariant[wm.LinkContent](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownContentKind, head.Kind)
	}
}

func decodeVariant[T wm.Content](data json.RawMessage) (wm.Content, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", v.ContentKind(), err)
	}
	return v, nil
}
