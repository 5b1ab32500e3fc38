package models

// BlockKind tags a classified unit of assistant output.
type BlockKind string

const (
	BlockPlain      BlockKind = "plain"
	BlockStructured BlockKind = "structured"
)

// ContentBlock is one renderable unit of an assistant response. For plain
// blocks Text is literal text to display as-is. For structured blocks Text is
// the inner content of a fenced segment and Tag is the fence tag ("sql",
// "table"); renderers treat structured blocks as opaque.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
	Tag  string    `json:"tag,omitempty"`
}
