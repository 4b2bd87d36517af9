package openai

import (
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/juristech/acervo/internal/domain"
)

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 0); got != "abcdef" {
		t.Errorf("maxChars=0 must disable truncation, got %q", got)
	}
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("got %q, want abcd", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("short input must pass through, got %q", got)
	}

	// Never split a multi-byte rune: cutting "ação" after byte 2 would land
	// inside the ç sequence, so the cut backs off to "a".
	if got := truncate("ação", 2); got != "a" {
		t.Errorf("got %q, want %q", got, "a")
	}
	if got := truncate("ação", 3); got != "aç" {
		t.Errorf("got %q, want %q", got, "aç")
	}
}

func TestParseAPIErrorWrapsUnavailable(t *testing.T) {
	cases := []error{
		&openai.RequestError{HTTPStatusCode: 503, Body: []byte(`{"detail":"overloaded"}`)},
		&openai.RequestError{HTTPStatusCode: 500, Body: []byte("boom")},
		&openai.APIError{HTTPStatusCode: 429, Message: "rate limited"},
		errors.New("dial tcp: connection refused"),
	}
	for _, in := range cases {
		out := parseAPIError(in)
		if !errors.Is(out, domain.ErrEmbeddingUnavailable) {
			t.Errorf("parseAPIError(%v) not classified retryable: %v", in, out)
		}
	}
}

func TestParseAPIErrorIncludesDetail(t *testing.T) {
	err := parseAPIError(&openai.RequestError{
		HTTPStatusCode: 503,
		Body:           []byte(`{"detail":"model warming up"}`),
	})
	if !strings.Contains(err.Error(), "model warming up") {
		t.Errorf("detail lost: %v", err)
	}
}
