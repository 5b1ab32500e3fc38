package assistant

import (
	"strings"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
)

// Classify splits raw assistant output into renderable blocks. The delimiter
// convention is a markdown code fence: a line starting with ``` plus an
// optional tag opens a structured segment, a bare ``` line closes it.
//
// Classification is deterministic and total: every byte of raw lands in
// exactly one block, an unterminated fence degrades to plain text rather than
// failing the message, and empty input yields a single empty plain block.
//
// Under a policy that forbids structured content, would-be structured
// segments are coerced to plain blocks carrying the raw fenced text verbatim.
// That coercion is the containment point for the admin/patient boundary:
// patient surfaces never receive a structured block, whatever the backend
// produced.
func Classify(raw string, policy models.Policy) []models.ContentBlock {
	if raw == "" {
		return []models.ContentBlock{{Kind: models.BlockPlain}}
	}

	lines := strings.Split(raw, "\n")

	// seg reconstructs lines[from:to] with their original separators, so
	// concatenating adjacent segments reproduces the input exactly.
	seg := func(from, to int) string {
		var b strings.Builder
		for i := from; i < to; i++ {
			b.WriteString(lines[i])
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
		return b.String()
	}

	var blocks []models.ContentBlock
	plainFrom := 0
	flushPlain := func(to int) {
		if to > plainFrom {
			blocks = append(blocks, models.ContentBlock{
				Kind: models.BlockPlain,
				Text: seg(plainFrom, to),
			})
		}
	}

	i := 0
	for i < len(lines) {
		tag, open := fenceTag(lines[i])
		if !open {
			i++
			continue
		}

		closing := -1
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lines[j]) {
				closing = j
				break
			}
		}
		if closing == -1 {
			// Unterminated fence: the remainder is plain text.
			break
		}

		flushPlain(i)
		if policy.AllowStructured() {
			blocks = append(blocks, models.ContentBlock{
				Kind: models.BlockStructured,
				Text: strings.Join(lines[i+1:closing], "\n"),
				Tag:  tag,
			})
		} else {
			blocks = append(blocks, models.ContentBlock{
				Kind: models.BlockPlain,
				Text: seg(i, closing+1),
			})
		}
		plainFrom = closing + 1
		i = closing + 1
	}
	flushPlain(len(lines))

	return blocks
}

func fenceTag(line string) (tag string, open bool) {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasPrefix(trimmed, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, "```")), true
}

func isClosingFence(line string) bool {
	return strings.TrimSpace(line) == "```"
}
