package errors

import (
	"strings"
	"testing"
)

func TestValidateRepositoryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "maven-releases", false},
		{"valid with dots", "npm.hosted", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 201), true},
		{"forward slash", "maven/releases", true},
		{"backslash", "maven\\releases", true},
		{"traversal", "..", true},
		{"control character", "maven\x00releases", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepositoryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepositoryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRepository) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidRepository)
			}
		})
	}
}

func TestValidateArtifactPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid nested", "org/example/demo/1.0/demo-1.0.jar", false},
		{"valid single file", "index.html", false},
		{"dots inside segment", "com.example/app-1.0..jar", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal segment", "org/../../etc/passwd", true},
		{"leading traversal", "../escape.jar", true},
		{"backslash", "org\\example\\demo.jar", true},
		{"null byte", "org/demo\x00.jar", true},
		{"too long", strings.Repeat("a/", 600) + "f.jar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArtifactPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateArtifactPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://nexus.example.com", false},
		{"http", "http://localhost:8081", false},
		{"empty", "", true},
		{"no scheme", "nexus.example.com", true},
		{"file scheme", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
