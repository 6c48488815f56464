// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cms

import "encoding/json"

// Span is a run of text inside a block.
type Span struct {
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// Block is a flattened rich-text paragraph.
type Block struct {
	Style    string `json:"style"`
	Children []Span `json:"children"`
}

type rawSpan struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type rawBlock struct {
	Type     string    `json:"_type"`
	Style    string    `json:"style"`
	Children []rawSpan `json:"children"`
}

// FlattenBlocks converts rich-text blocks into plain Blocks. Entries that
// are not text blocks, such as embedded images, are dropped.
func FlattenBlocks(blocks []json.RawMessage) []Block {
	out := make([]Block, 0, len(blocks))
	for _, raw := range blocks {
		var b rawBlock
		if err := json.Unmarshal(raw, &b); err != nil || b.Type != "block" {
			continue
		}
		if b.Style == "" {
			b.Style = "normal"
		}
		block := Block{Style: b.Style, Children: make([]Span, 0, len(b.Children))}
		for _, s := range b.Children {
			if s.Type != "" && s.Type != "span" {
				continue
			}
			block.Children = append(block.Children, Span{Text: s.Text, Marks: s.Marks})
		}
		out = append(out, block)
	}
	return out
}

// PlainText joins the text of every span, one line per block.
func PlainText(blocks []Block) string {
	var b []byte
	for i, blk := range blocks {
		if i > 0 {
			b = append(b, '\n')
		}
		for _, s := range blk.Children {
			b = append(b, s.Text...)
		}
	}
	return string(b)
}

// normalize rewrites a decoded document for storage-shaped consumers:
// system fields (leading underscore) are removed and rich-text arrays are
// flattened into plain Blocks.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if len(k) > 0 && k[0] == '_' {
				continue
			}
			out[k] = normalize(child)
		}
		return out
	case []any:
		if isRichText(t) {
			raws := make([]json.RawMessage, 0, len(t))
			for _, item := range t {
				b, err := json.Marshal(item)
				if err != nil {
					continue
				}
				raws = append(raws, b)
			}
			return FlattenBlocks(raws)
		}
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalize(child)
		}
		return out
	default:
		return v
	}
}

// isRichText reports whether every element is a text block.
func isRichText(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok || m["_type"] != "block" {
			return false
		}
	}
	return true
}
