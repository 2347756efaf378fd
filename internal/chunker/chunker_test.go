package chunker

import (
	"strings"
	"testing"
)

func TestChunk_EmptyInput(t *testing.T) {
	if result := Chunk("   \n ", DefaultOptions()); result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestChunk_ShortContent(t *testing.T) {
	text := "9am: Finish report\n3pm: Call client"
	result := Chunk(text, DefaultOptions())
	if len(result) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result))
	}
	if result[0].Text != text {
		t.Errorf("expected %q, got %q", text, result[0].Text)
	}
	if result[0].StartLine != 1 || result[0].EndLine != 2 {
		t.Errorf("expected lines 1-2, got %d-%d", result[0].StartLine, result[0].EndLine)
	}
}

func TestChunk_SplitsOnHeadings(t *testing.T) {
	section := strings.Repeat("Some schedule detail here. ", 10)
	text := "# Morning\n" + section + "\n# Afternoon\n" + section + "\n# Evening\n" + section

	result := Chunk(text, DefaultOptions())
	if len(result) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(result))
	}
	if !strings.HasPrefix(result[0].Text, "# Morning") {
		t.Errorf("first chunk should start with the first heading, got %q", result[0].Text)
	}
	if result[1].StartLine <= result[0].StartLine {
		t.Errorf("expected increasing line numbers, got %d then %d", result[0].StartLine, result[1].StartLine)
	}
}

func TestChunk_RespectsMaxSize(t *testing.T) {
	opts := Options{TargetSize: 200, MaxSize: 300}
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "This is a line of text that is about fifty characters long.")
	}
	result := Chunk(strings.Join(lines, "\n"), opts)
	if len(result) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(result))
	}
	for i, c := range result {
		if len(c.Text) > opts.MaxSize {
			t.Errorf("chunk %d has %d chars, max %d", i, len(c.Text), opts.MaxSize)
		}
	}
}

func TestChunk_MergesSmallParagraphs(t *testing.T) {
	text := "# A\n\nShort.\n\n# B\n\nAlso short."
	result := Chunk(text, Options{TargetSize: 400, MaxSize: 600})
	if len(result) != 1 {
		t.Errorf("expected 1 merged chunk, got %d", len(result))
	}
}

func TestChunk_LongSingleLine(t *testing.T) {
	line := strings.Repeat("word ", 300)
	opts := Options{TargetSize: 100, MaxSize: 150}
	result := Chunk(line, opts)
	if len(result) < 10 {
		t.Fatalf("expected the line to be split on words, got %d chunks", len(result))
	}
	for _, c := range result {
		if len(c.Text) > opts.MaxSize {
			t.Errorf("chunk has %d chars, max %d", len(c.Text), opts.MaxSize)
		}
		if c.StartLine != 1 {
			t.Errorf("expected all pieces on line 1, got %d", c.StartLine)
		}
	}
}
