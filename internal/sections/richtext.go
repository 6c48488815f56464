package sections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RichText is a text field that an editor may fill with rich-text blocks.
// It decodes from a plain string or from an array of blocks, either raw
// ({"_type":"block","children":[...]}) or already flattened
// ({"style":...,"children":[...]}). Blocks collapse to their text, one
// line per block. It always encodes as a string.
type RichText string

type richBlock struct {
	Type     string `json:"_type"`
	Children []struct {
		Type string `json:"_type"`
		Text string `json:"text"`
	} `json:"children"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *RichText) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*t = ""
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = RichText(s)
		return nil
	case trimmed[0] == '[':
		var blocks []richBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return fmt.Errorf("rich text: %w", err)
		}
		lines := make([]string, 0, len(blocks))
		for _, blk := range blocks {
			if blk.Type != "" && blk.Type != "block" {
				continue
			}
			var line strings.Builder
			for _, span := range blk.Children {
				if span.Type != "" && span.Type != "span" {
					continue
				}
				line.WriteString(span.Text)
			}
			lines = append(lines, line.String())
		}
		*t = RichText(strings.Join(lines, "\n"))
		return nil
	default:
		return fmt.Errorf("rich text: expected string or block array, got %s", trimmed)
	}
}

// String returns the plain text.
func (t RichText) String() string { return string(t) }
