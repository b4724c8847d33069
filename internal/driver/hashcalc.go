package driver

import (
	"fmt"

	"cbrace/internal/format"
	"cbrace/internal/project"
	"cbrace/internal/source"
)

// passesRevision changes whenever the passes start producing different
// output for the same input; it invalidates old cache entries.
const passesRevision = 1

// optionsDigest hashes everything besides file content that affects output.
func optionsDigest(opts format.Options, encoding string) project.Digest {
	return project.Sum(fmt.Appendf(nil, "rev=%d;strip=%t;brace-before-comment=%t;encoding=%s",
		passesRevision, opts.StripComments, opts.BraceBeforeComment, encoding))
}

// cacheKey: H(content || options || flags). BOM and CRLF normalization are
// part of the key since they decide whether a file must be rewritten.
func cacheKey(file *source.File, opts format.Options, encoding string) project.Digest {
	flags := project.Sum(fmt.Appendf(nil, "flags=%d", file.Flags))
	return project.Combine(project.Digest(file.Hash), optionsDigest(opts, encoding), flags)
}
