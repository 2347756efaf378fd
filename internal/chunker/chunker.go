// Package chunker splits artifact text into chunks for keyword indexing.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 300
	DefaultMaxSize    = 500
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MaxSize:    DefaultMaxSize,
	}
}

// ChunkResult is a chunk with its 1-based line span in the original text.
type ChunkResult struct {
	Text      string
	StartLine int
	EndLine   int
}

// Chunk splits text into chunks. Text no longer than MaxSize is one chunk.
func Chunk(text string, opts Options) []ChunkResult {
	if opts.TargetSize <= 0 || opts.MaxSize <= 0 {
		opts = DefaultOptions()
	}
	if opts.TargetSize > opts.MaxSize {
		opts.TargetSize = opts.MaxSize
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxSize {
		return []ChunkResult{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}

	var out []ChunkResult
	var acc *ChunkResult
	emit := func() {
		if acc == nil {
			return
		}
		if len(acc.Text) > opts.MaxSize {
			out = append(out, splitLines(*acc, opts)...)
		} else {
			out = append(out, *acc)
		}
		acc = nil
	}

	for _, p := range paragraphs(text) {
		if acc == nil {
			cp := p
			acc = &cp
			continue
		}
		if len(acc.Text)+2+len(p.Text) <= opts.TargetSize {
			acc.Text += "\n\n" + p.Text
			acc.EndLine = p.EndLine
			continue
		}
		emit()
		cp := p
		acc = &cp
	}
	emit()
	return out
}

// paragraphs splits text on blank lines and markdown headings.
func paragraphs(text string) []ChunkResult {
	lines := strings.Split(text, "\n")
	var out []ChunkResult
	var cur []string
	start := 1

	flush := func(end int) {
		t := strings.TrimSpace(strings.Join(cur, "\n"))
		if t != "" {
			out = append(out, ChunkResult{Text: t, StartLine: start, EndLine: end})
		}
		cur = nil
	}

	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush(n - 1)
			start = n + 1
			continue
		case strings.HasPrefix(trimmed, "#") && len(cur) > 0:
			flush(n - 1)
			start = n
		}
		if len(cur) == 0 {
			start = n
		}
		cur = append(cur, line)
	}
	flush(len(lines))
	return out
}

// splitLines breaks an oversized paragraph on line boundaries, falling back
// to word boundaries for single lines longer than MaxSize.
func splitLines(p ChunkResult, opts Options) []ChunkResult {
	var out []ChunkResult
	var cur []string
	curLen := 0
	curStart := p.StartLine

	flush := func(end int) {
		t := strings.TrimSpace(strings.Join(cur, "\n"))
		if t != "" {
			out = append(out, ChunkResult{Text: t, StartLine: curStart, EndLine: end})
		}
		cur = nil
		curLen = 0
	}

	for i, line := range strings.Split(p.Text, "\n") {
		n := p.StartLine + i
		if len(line) > opts.MaxSize {
			flush(n - 1)
			for _, piece := range splitWords(line, opts.TargetSize) {
				out = append(out, ChunkResult{Text: piece, StartLine: n, EndLine: n})
			}
			curStart = n + 1
			continue
		}
		if curLen+len(line) > opts.TargetSize && len(cur) > 0 {
			flush(n - 1)
			curStart = n
		}
		if len(cur) == 0 {
			curStart = n
		}
		cur = append(cur, line)
		curLen += len(line) + 1
	}
	flush(p.EndLine)
	return out
}

func splitWords(line string, size int) []string {
	var out []string
	var b strings.Builder
	for _, w := range strings.Fields(line) {
		if b.Len() > 0 && b.Len()+1+len(w) > size {
			out = append(out, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
