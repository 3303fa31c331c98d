package gameid

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
	"time"
)

func TestNewProducesParseableIDs(t *testing.T) {
	t.Parallel()
	id := New()
	if len(id) != encodedLen {
		t.Fatalf("expected %d characters, got %d (%q)", encodedLen, len(id), id)
	}
	parsed, err := Parse(id.String())
	if err != nil {
		t.Fatalf("minted ID failed to parse: %v", err)
	}
	if parsed != id {
		t.Errorf("parse changed the ID: %q -> %q", id, parsed)
	}
}

func TestNewIsUnique(t *testing.T) {
	t.Parallel()
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate ID minted: %s", id)
		}
		seen[id] = true
	}
}

func TestIDsSortByCreationTime(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []ID
	for i := 0; i < 10; i++ {
		id, err := NewAt(base.Add(time.Duration(i)*time.Millisecond), rand.Reader)
		if err != nil {
			t.Fatalf("NewAt: %v", err)
		}
		ids = append(ids, id)
	}

	for i := 1; i < len(ids); i++ {
		if strings.Compare(ids[i-1].String(), ids[i].String()) >= 0 {
			t.Errorf("IDs out of order: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestNewAtIsDeterministic(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entropy := bytes.Repeat([]byte{0xAB}, 10)

	a, err := NewAt(at, bytes.NewReader(entropy))
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	b, err := NewAt(at, bytes.NewReader(entropy))
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	if a != b {
		t.Errorf("same inputs minted different IDs: %s vs %s", a, b)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "01h5n0et5q6mt3v7ms1234abc0", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "81h5n0et5q6mt3v7ms1234abc0", true},
		{"excluded letter", "01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase", "01H5N0ET5Q6MT3V7MS1234ABC0", true},
		{"non-canonical last char", "01h5n0et5q6mt3v7ms1234abcd", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestParseRejectsNonCanonicalPadding(t *testing.T) {
	t.Parallel()
	id := New().String()

	// The tail carries two zero padding bits, so bumping the last
	// character's alphabet index within the same 5-bit value decodes to
	// the same 128 bits but is not what encode produces.
	last := strings.IndexByte(alphabet, id[encodedLen-1])
	if last%4 != 0 {
		t.Fatalf("minted ID ends with non-canonical character: %s", id)
	}
	for offset := 1; offset <= 3; offset++ {
		mutated := id[:encodedLen-1] + string(alphabet[last+offset])
		if _, err := Parse(mutated); err == nil {
			t.Errorf("Parse(%q) accepted a non-canonical final character", mutated)
		}
	}
}

func TestAlphabet(t *testing.T) {
	t.Parallel()
	if len(alphabet) != 32 {
		t.Fatalf("alphabet should have 32 characters, got %d", len(alphabet))
	}
	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("duplicate character in alphabet: %c", char)
		}
		seen[char] = true
	}
	for _, char := range "ilou" {
		if strings.ContainsRune(alphabet, char) {
			t.Errorf("alphabet must not contain %c", char)
		}
	}
}
