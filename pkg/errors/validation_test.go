package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Requests", false},
		{"valid with dash", "my-package", false},
		{"valid with underscore", "my_package", false},
		{"valid with dot", "my.package", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateManifestFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid Project.toml", "Project.toml", false},
		{"valid Manifest.toml", "Manifest.toml", false},
		{"valid .env", ".env", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
		{"hidden file long", ".secret.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"https", "https://example.com/path.git", false},
		{"http", "http://example.com/path.git", false},
		{"ssh", "ssh://git@example.com/path.git", false},
		{"git@", "git@github.com:org/repo.git", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
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

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "src/main.jl", false},
		{"valid nested", "pkg/internal/util/helpers.jl", false},
		{"valid filename only", "README.md", false},
		{"valid with dots", "v1.2.3/package.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, CodeInvalidSpec) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		CodeInvalidSpec,
		CodeUnresolvedSpec,
		CodeNotFound,
		CodeIOFailure,
		CodeParseFailure,
		CodeRegistryFailure,
		CodeGitFailure,
		CodePrecompileError,
		CodePrecompilableLater,
		CodeInterrupted,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
