package errors

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var userHome = os.UserHomeDir

// ValidateBaseURL checks that raw is an absolute http(s) URL. Base URLs are
// concatenated with identifiers verbatim, so a missing trailing slash is
// reported as well when requireSlash is set.
func ValidateBaseURL(name, raw string, requireSlash bool) error {
	if raw == "" {
		return New(ErrCodeInvalidURL, "%s cannot be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "%s is not a valid URL", name)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "%s has no host", name)
	}
	if requireSlash && !strings.HasSuffix(raw, "/") {
		return New(ErrCodeInvalidURL, "%s must end with a slash", name)
	}
	return nil
}

// ValidateDataID rejects identifiers that cannot produce a manifest
// identifier: empty values, control characters and fewer than three
// colon-separated segments.
func ValidateDataID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "data identifier cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "data identifier %q contains control characters", id)
		}
	}
	if strings.Count(id, ":") < 2 {
		return New(ErrCodeInvalidInput, "data identifier %q needs at least three colon-separated segments", id)
	}
	return nil
}

// ValidateOutputDir validates a directory the file store may clear. The
// filesystem root and the home directory are refused.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}
	if strings.ContainsRune(dir, 0) {
		return New(ErrCodeInvalidPath, "output directory contains a null byte")
	}
	clean := filepath.Clean(dir)
	if clean == string(filepath.Separator) || clean == "." {
		return New(ErrCodeInvalidPath, "refusing to use %q as output directory", dir)
	}
	if home, err := userHome(); err == nil && clean == filepath.Clean(home) {
		return New(ErrCodeInvalidPath, "refusing to use the home directory as output directory")
	}
	return nil
}
