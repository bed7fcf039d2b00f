// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/woozymasta/pathrules"
)

// OpenCompanion opens name through sf with the default buffer size.
func OpenCompanion(sf Source, name string) (Source, error) {
	if sf == nil {
		return nil, ErrNilSource
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	return sf.Open(name, DefaultBufferSize)
}

// OpenByExtension opens the sibling of sf that differs only by extension.
// An empty ext opens the name without extension.
func OpenByExtension(sf Source, ext string) (Source, error) {
	if sf == nil {
		return nil, ErrNilSource
	}

	return OpenCompanion(sf, SwapExtension(sf.Name(), ext))
}

// OpenByFilename opens name relative to the directory of sf with default companion rules.
func OpenByFilename(sf Source, name string) (Source, error) {
	r, err := NewCompanionResolver(CompanionOptions{})
	if err != nil {
		return nil, err
	}

	return r.Open(sf, name)
}

// CompanionResolver opens companions relative to a source under access rules.
type CompanionResolver struct {
	matcher *pathrules.Matcher
	opts    CompanionOptions
}

// NewCompanionResolver compiles companion access rules.
func NewCompanionResolver(opts CompanionOptions) (*CompanionResolver, error) {
	opts.applyDefaults()

	r := &CompanionResolver{opts: opts}
	rules := normalizeCompanionRules(opts.Rules)
	if len(rules) == 0 {
		return r, nil
	}

	m, err := pathrules.NewMatcher(rules, opts.MatcherOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: compile companion rules: %w", ErrInvalidConfig, err)
	}

	r.matcher = m
	return r, nil
}

// normalizeCompanionRules converts patterns to slash form and drops empty patterns.
func normalizeCompanionRules(rules []pathrules.Rule) []pathrules.Rule {
	out := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(rule.Pattern), `\`, `/`), "./")
		if pattern == "" {
			continue
		}

		out = append(out, pathrules.Rule{Action: rule.Action, Pattern: pattern})
	}

	return out
}

// Resolve returns the path name refers to next to sf.
func (r *CompanionResolver) Resolve(sf Source, name string) (string, error) {
	if sf == nil {
		return "", ErrNilSource
	}
	if name == "" {
		return "", ErrEmptyName
	}
	if !r.opts.AllowRelative && isEscapingPath(name) {
		loggerOf(sf).Debugf("companion of %s: ignored relative path %s", sf.Name(), name)
		return "", fmt.Errorf("%w: %s", ErrRelativePath, name)
	}

	if r.matcher != nil {
		candidate := strings.TrimPrefix(strings.ReplaceAll(name, `\`, `/`), "./")
		if !r.matcher.Included(candidate, false) {
			return "", fmt.Errorf("%w: %s", ErrCompanionDenied, name)
		}
	}

	dir := Dir(sf.Name())
	if dir == "" {
		return name, nil
	}

	sep := dir[len(dir)-1:]
	part := strings.NewReplacer("/", sep, `\`, sep).Replace(name)
	switch {
	case strings.HasPrefix(part, "."+sep):
		part = part[2:]
	case strings.HasPrefix(part, ".."+sep):
		if parent := Dir(dir[:len(dir)-1]); parent != "" {
			dir = parent
			part = part[3:]
		}
	}

	full := dir + part
	if len(full) > PathLimit {
		return "", fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(full))
	}

	return full, nil
}

// Open opens name relative to the directory of sf.
func (r *CompanionResolver) Open(sf Source, name string) (Source, error) {
	full, err := r.Resolve(sf, name)
	if err != nil {
		return nil, err
	}

	return OpenCompanion(sf, full)
}

// isEscapingPath reports parent references, drive paths and rooted paths.
func isEscapingPath(name string) bool {
	return strings.Contains(name, "..") || strings.Contains(name, `:\`) || strings.HasPrefix(name, "/")
}

// ReadKeyFile reads a key companion of sf: "name.extkey" first, then ".extkey"
// in the same directory. Keys larger than maxSize are rejected.
func ReadKeyFile(sf Source, maxSize int) ([]byte, error) {
	if sf == nil {
		return nil, ErrNilSource
	}

	name := sf.Name()
	candidates := []string{
		name + "key",
		Dir(name) + "." + Ext(name) + "key",
	}

	var errs []error
	for _, candidate := range candidates {
		key, err := OpenCompanion(sf, candidate)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		data, err := readAllLimited(key, maxSize)
		closeErr := key.Close()
		if err != nil {
			return nil, fmt.Errorf("read key file %s: %w", candidate, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close key file %s: %w", candidate, closeErr)
		}

		return data, nil
	}

	return nil, fmt.Errorf("key file for %s: %w", name, errors.Join(errs...))
}

// FilemapName is the companion listing files that belong to a stream.
const FilemapName = ".txtm"

// filemapLineSize bounds one line of a filemap.
const filemapLineSize = 0x2000

// ReadFilemapFile opens file number fileNum assigned to sf by the filemap
// in its directory.
func ReadFilemapFile(sf Source, fileNum int) (Source, error) {
	c, _, err := ReadFilemapFilePos(sf, fileNum)
	return c, err
}

// ReadFilemapFilePos is ReadFilemapFile that also returns the position of
// the matching line. Positions count "name: files" lines and restart after a
// "#@reset-pos" line.
//
// Lines have the form "name: file1, file2, ..."; text after "#" or a tab is ignored.
func ReadFilemapFilePos(sf Source, fileNum int) (Source, int, error) {
	if sf == nil {
		return nil, 0, ErrNilSource
	}
	if fileNum < 0 {
		return nil, 0, fmt.Errorf("%w: filemap file %d", ErrInvalidConfig, fileNum)
	}

	name, pos, err := lookupFilemap(sf, fileNum)
	if err != nil {
		return nil, 0, err
	}

	c, err := OpenByFilename(sf, name)
	if err != nil {
		return nil, 0, err
	}

	return c, pos, nil
}

// lookupFilemap returns file name and line position listed for sf.
func lookupFilemap(sf Source, fileNum int) (string, int, error) {
	m, err := OpenByFilename(sf, FilemapName)
	if err != nil {
		return "", 0, fmt.Errorf("open filemap: %w", err)
	}
	defer func() { _ = m.Close() }()

	tr, err := NewTextReader(m, ReadBOM(m), 0, filemapLineSize)
	if err != nil {
		return "", 0, err
	}

	target := Filename(sf.Name())
	pos := 0
	for {
		line, err := tr.Line()
		if errors.Is(err, io.EOF) {
			return "", 0, fmt.Errorf("%w: %s not listed in %s", fs.ErrNotExist, target, m.Name())
		}
		if err != nil {
			return "", 0, fmt.Errorf("filemap %s: %w", m.Name(), err)
		}

		key, files, ok := parseFilemapLine(line)
		if !ok {
			if strings.TrimSpace(line) == "#@reset-pos" {
				pos = 0
			}

			continue
		}

		if key == target {
			if fileNum >= len(files) || files[fileNum] == "" {
				return "", 0, fmt.Errorf("%w: file %d of %s in %s", fs.ErrNotExist, fileNum, target, m.Name())
			}

			return files[fileNum], pos, nil
		}

		pos++
	}
}

// parseFilemapLine splits "key: a, b" into key and file list.
func parseFilemapLine(line string) (string, []string, bool) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", nil, false
	}

	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, "#\t") {
		return "", nil, false
	}
	if i := strings.IndexAny(value, "#\t"); i >= 0 {
		value = value[:i]
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil, false
	}

	files := strings.Split(value, ",")
	for i := range files {
		files[i] = strings.TrimSpace(files[i])
	}

	return key, files, true
}

// readAllLimited reads the whole source when it is not larger than maxSize.
func readAllLimited(sf Source, maxSize int) ([]byte, error) {
	size := sf.Size()
	if size > int64(maxSize) {
		return nil, fmt.Errorf("%w: size 0x%x above limit 0x%x", ErrInvalidKey, size, maxSize)
	}

	data := make([]byte, size)
	n, err := sf.ReadAt(data, 0)
	if int64(n) != size {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return nil, err
	}

	return data, nil
}
