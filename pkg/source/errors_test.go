package source

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorClass
	}{
		{200, ""},
		{304, ""},
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassClient, false},
		{ErrorClassDecode, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{"", false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.want {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &APIError{StatusCode: 0, Class: ErrorClassNetwork, Message: "request failed", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("APIError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "network") || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := &APIError{StatusCode: 404, Class: ErrorClassClient, Message: "not found"}
	if got := bare.Error(); got != "artworks API client error (status 404): not found" {
		t.Errorf("Error() = %q", got)
	}
}
