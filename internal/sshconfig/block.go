package sshconfig

import (
	"errors"
	"strings"
)

// ErrUnterminatedBlock means a start marker was found with no end marker
// after it.
var ErrUnterminatedBlock = errors.New("managed block start marker has no matching end marker")

// Block is the three-way split of a config file around the managed region.
// Prefix+Managed+Suffix is always the original content.
type Block struct {
	Prefix  string
	Managed string
	Suffix  string
	Found   bool
}

// Split locates the first complete managed block in content. Without a
// start marker the whole content is Prefix. A start marker without an end
// marker returns the whole content as Prefix and ErrUnterminatedBlock.
func Split(content string) (Block, error) {
	lines := strings.SplitAfter(content, "\n")

	start, end := -1, -1
	offset := 0
	for _, line := range lines {
		next := offset + len(line)
		trimmed := strings.TrimSpace(line)
		switch {
		case start < 0 && trimmed == StartMarker:
			start = offset
		case start >= 0 && trimmed == EndMarker:
			end = next
		}
		if end >= 0 {
			break
		}
		offset = next
	}

	switch {
	case start < 0:
		return Block{Prefix: content}, nil
	case end < 0:
		return Block{Prefix: content}, ErrUnterminatedBlock
	}
	return Block{
		Prefix:  content[:start],
		Managed: content[start:end],
		Suffix:  content[end:],
		Found:   true,
	}, nil
}

// Merge replaces the managed region with rendered. When the file had no
// managed block, rendered is appended after a blank separator line.
func (b Block) Merge(rendered string) string {
	if b.Found {
		return b.Prefix + rendered + b.Suffix
	}
	if b.Prefix == "" {
		return rendered
	}
	prefix := b.Prefix
	if !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	if !strings.HasSuffix(prefix, "\n\n") {
		prefix += "\n"
	}
	return prefix + rendered
}

// Lines splits text into lines without terminators. Empty text has no
// lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
