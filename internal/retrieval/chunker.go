package retrieval

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators are tried in order, from paragraph breaks down to single runes.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// TextChunker splits text into overlapping chunks of at most Size runes,
// preferring to cut at paragraph, line and word boundaries.
type TextChunker struct {
	Size       int
	Overlap    int
	Separators []string
}

// NewTextChunker creates a chunker. overlap is clamped to [0, size).
func NewTextChunker(size, overlap int) *TextChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &TextChunker{Size: size, Overlap: overlap, Separators: defaultSeparators}
}

// Split returns the chunks of text. Blank input yields no chunks.
func (c *TextChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, c.Separators)
}

func (c *TextChunker) split(text string, separators []string) []string {
	sep := ""
	rest := []string(nil)
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, small []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) <= c.Size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			out = append(out, c.merge(small, sep)...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, c.split(p, rest)...)
		}
	}
	if len(small) > 0 {
		out = append(out, c.merge(small, sep)...)
	}
	return out
}

// merge packs pieces into chunks, carrying up to Overlap runes of trailing
// pieces into the next chunk.
func (c *TextChunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var out, window []string
	total := 0

	joinedLen := func(extra int) int {
		if len(window) == 0 {
			return extra
		}
		return total + sepLen + extra
	}

	for _, p := range pieces {
		l := runeLen(p)
		if len(window) > 0 && joinedLen(l) > c.Size {
			if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
				out = append(out, doc)
			}
			for len(window) > 0 && (total > c.Overlap || joinedLen(l) > c.Size) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		total = joinedLen(l)
		window = append(window, p)
	}

	if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
		out = append(out, doc)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
