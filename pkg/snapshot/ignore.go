package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Ignore decides which paths a snapshot skips. It holds a set of excluded
// absolute paths, always including the store's own location, plus optional
// gitignore-style patterns matched against paths relative to the root.
// It is configuration only and never persisted.
type Ignore struct {
	root  string
	paths []string

	patterns []ignorePattern

	// Precompiled/indexed pattern groups used by matchSingle fast paths.
	exactBasePatterns   map[string][]int
	exactPathPatterns   map[string][]int
	wildcardBasePattern []int
	wildcardPathPattern []int
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
	regex    *regexp.Regexp
}

// NewIgnore creates an Ignore for snapshots of root. Each path is excluded
// along with everything beneath it; relative paths are taken relative to
// root.
func NewIgnore(root string, paths ...string) (*Ignore, error) {
	canonRoot, err := canonicalPath(root)
	if err != nil {
		return nil, fmt.Errorf("ignore: root %s: %w", root, err)
	}
	ig := &Ignore{root: canonRoot}
	for _, p := range paths {
		if err := ig.AddPath(p); err != nil {
			return nil, err
		}
	}
	ig.compile()
	return ig, nil
}

// AddPath excludes p and everything beneath it.
func (ig *Ignore) AddPath(p string) error {
	if strings.TrimSpace(p) == "" {
		return nil
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(ig.root, p)
	}
	canon, err := canonicalPath(p)
	if err != nil {
		return fmt.Errorf("ignore: path %s: %w", p, err)
	}
	ig.paths = append(ig.paths, canon)
	return nil
}

// Paths returns the canonical excluded paths.
func (ig *Ignore) Paths() []string {
	if ig == nil {
		return nil
	}
	return append([]string(nil), ig.paths...)
}

// AddPatterns adds gitignore-style pattern lines.
func (ig *Ignore) AddPatterns(lines ...string) {
	for _, line := range lines {
		if p := parseLine(line); p != nil {
			ig.patterns = append(ig.patterns, *p)
		}
	}
	ig.compile()
}

// LoadPatternFile reads patterns from file. A missing file is not an error.
func (ig *Ignore) LoadPatternFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("ignore: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ignore: read %s: %w", file, err)
	}
	ig.AddPatterns(lines...)
	return nil
}

// Match reports whether abs, a canonical absolute path, is excluded. rel is
// the slash-separated path relative to the snapshot root used for pattern
// matching; it may be empty to skip patterns. Directory-only patterns
// apply when isDir is set or when they name an ancestor of rel.
func (ig *Ignore) Match(abs, rel string, isDir bool) bool {
	if ig == nil {
		return false
	}
	for _, p := range ig.paths {
		if withinPath(abs, p) {
			return true
		}
	}
	if rel == "" || len(ig.patterns) == 0 {
		return false
	}
	return ig.matchPattern(rel, isDir)
}

// withinPath reports whether p equals dir or lies beneath it, comparing
// whole path components.
func withinPath(p, dir string) bool {
	if p == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(p, dir)
}

// canonicalPath returns an absolute, cleaned path with symlinks resolved
// when the path exists.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// parseLine parses a single pattern line. Returns nil if the line is empty
// or a comment.
func parseLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}

	// Negation: lines starting with ! un-ignore a pattern.
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}

	// Directory-only: lines ending with / match directories only.
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	// A leading slash anchors the pattern at the root.
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}

	p.hasSlash = anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// matchPattern checks a slash-separated relative path against the
// patterns. A path beneath an ignored directory is ignored.
func (ig *Ignore) matchPattern(path string, isDir bool) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' && ig.matchSingle(path[:i], true) {
			return true
		}
	}
	return ig.matchSingle(path, isDir)
}

// matchSingle checks one path without looking at its ancestors. Last
// matching pattern wins (to support negation).
func (ig *Ignore) matchSingle(path string, isDir bool) bool {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}

	lastMatch := -1
	ignored := false
	apply := func(idx int) {
		if ig.patterns[idx].dirOnly && !isDir {
			return
		}
		if idx > lastMatch {
			lastMatch = idx
			ignored = !ig.patterns[idx].negated
		}
	}
	applyAll := func(patterns []int) {
		for _, idx := range patterns {
			apply(idx)
		}
	}

	// Exact literals are resolved via maps.
	if idxs, ok := ig.exactPathPatterns[path]; ok {
		applyAll(idxs)
	}
	if idxs, ok := ig.exactBasePatterns[base]; ok {
		applyAll(idxs)
	}

	// Wildcards still require matching checks but are pre-separated by target.
	for _, idx := range ig.wildcardPathPattern {
		if ig.patterns[idx].match(path) {
			apply(idx)
		}
	}
	for _, idx := range ig.wildcardBasePattern {
		if ig.patterns[idx].match(base) {
			apply(idx)
		}
	}

	return ignored
}

func (ig *Ignore) compile() {
	ig.exactBasePatterns = make(map[string][]int)
	ig.exactPathPatterns = make(map[string][]int)
	ig.wildcardBasePattern = nil
	ig.wildcardPathPattern = nil

	for idx := range ig.patterns {
		p := ig.patterns[idx]

		switch {
		case p.regex != nil:
			if p.hasSlash {
				ig.wildcardPathPattern = append(ig.wildcardPathPattern, idx)
			} else {
				ig.wildcardBasePattern = append(ig.wildcardBasePattern, idx)
			}
		case isLiteralPattern(p.pattern):
			if p.hasSlash {
				ig.exactPathPatterns[p.pattern] = append(ig.exactPathPatterns[p.pattern], idx)
			} else {
				ig.exactBasePatterns[p.pattern] = append(ig.exactBasePatterns[p.pattern], idx)
			}
		default:
			if p.hasSlash {
				ig.wildcardPathPattern = append(ig.wildcardPathPattern, idx)
			} else {
				ig.wildcardBasePattern = append(ig.wildcardBasePattern, idx)
			}
		}
	}
}

func isLiteralPattern(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[")
}

func (p *ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := filepath.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// Globstar directory segment: match zero or more path segments.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
