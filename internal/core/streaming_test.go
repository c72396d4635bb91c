package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("986073017K12345")...),
			expected: "986073017K12345",
		},
		{
			name:     "file without BOM",
			input:    []byte("986073017K12345"),
			expected: "986073017K12345",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
		{
			name:     "shorter than BOM",
			input:    []byte("9"),
			expected: "9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input), int64(len(input)))

	buf := make([]byte, 100)
	totalRead := 0
	for {
		n, err := reader.Read(buf)
		totalRead += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if totalRead != len(input) {
		t.Errorf("total read = %d, want %d", totalRead, len(input))
	}
	if reader.BytesRead() != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead(), len(input))
	}
}

func TestWrapForStreaming(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("line\n")...)
	stream, counter := WrapForStreaming(bytes.NewReader(input), int64(len(input)))

	result, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "line\n" {
		t.Errorf("got %q, want %q", result, "line\n")
	}
	if counter.BytesRead() != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d (BOM included)", counter.BytesRead(), len(input))
	}
}

func TestRunProgressPercent(t *testing.T) {
	tests := []struct {
		name     string
		p        RunProgress
		expected int
	}{
		{name: "unknown total", p: RunProgress{BytesRead: 50}, expected: 0},
		{name: "half", p: RunProgress{BytesRead: 50, BytesTotal: 100}, expected: 50},
		{name: "done", p: RunProgress{BytesRead: 100, BytesTotal: 100}, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Percent(); got != tt.expected {
				t.Errorf("Percent() = %d, want %d", got, tt.expected)
			}
		})
	}
}
