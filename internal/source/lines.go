package source

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SplitLines breaks content into lines without their terminators.
// A trailing newline does not produce an empty last line; empty content yields nil.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := string(content)
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// JoinLines renders lines back to bytes, each followed by a single '\n'.
func JoinLines(lines []string) []byte {
	size := 0
	for _, l := range lines {
		size += len(l) + 1
	}
	var buf bytes.Buffer
	buf.Grow(size)
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ReadLines is the line source: it loads path as UTF-8 and returns its lines.
// Errors wrap ErrSourceUnavailable (and fs.ErrNotExist for missing files).
func ReadLines(path string) ([]string, error) {
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return fs.Get(id).Lines(), nil
}

// WriteOptions configures the line sink.
type WriteOptions struct {
	// Perm is used when the destination does not exist yet; 0 means 0o644.
	// An existing destination keeps its mode.
	Perm os.FileMode
	// Encoding re-encodes output from UTF-8 (WHATWG label, empty for UTF-8).
	Encoding string
}

// WriteLines is the line sink: it writes each line followed by '\n' to path.
// Output goes to a temp file in the same directory which is renamed over the
// destination, so a failed write leaves the previous content intact.
// Errors wrap ErrSinkFailure.
func WriteLines(path string, lines []string, opts WriteOptions) error {
	return WriteFile(path, JoinLines(lines), opts)
}

// WriteFile atomically replaces path with data, see WriteLines.
func WriteFile(path string, data []byte, opts WriteOptions) (err error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return sinkError(path, err)
	}
	if enc != nil {
		data, err = enc.NewEncoder().Bytes(data)
		if err != nil {
			return sinkError(path, fmt.Errorf("encode %s: %w", opts.Encoding, err))
		}
	}

	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cbrace-*")
	if err != nil {
		return sinkError(path, err)
	}
	tmpPath := tmp.Name()
	// temp-файл убираем на любом пути ошибки
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if _, err = bw.Write(data); err != nil {
		return sinkError(path, err)
	}
	if err = bw.Flush(); err != nil {
		return sinkError(path, err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return sinkError(path, err)
	}
	if err = tmp.Close(); err != nil {
		return sinkError(path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return sinkError(path, err)
	}
	return nil
}
