package source

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// LookupEncoding resolves a WHATWG encoding label such as "windows-1252"
// or "latin1". UTF-8 (and the empty label) resolve to nil: content is used as is.
func LookupEncoding(label string) (encoding.Encoding, error) {
	name := canonicalEncoding(label)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	if canon, nameErr := htmlindex.Name(enc); nameErr == nil && canon == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

func canonicalEncoding(label string) string {
	name := strings.ToLower(strings.TrimSpace(label))
	switch name {
	case "", "utf-8", "utf8":
		return ""
	}
	return name
}
