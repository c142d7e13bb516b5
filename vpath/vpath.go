// Package vpath normalizes and classifies the virtual paths used to
// address files inside indexed PBO archives: forward-slash, ASCII
// lowercase, no leading slash, joined from an archive prefix and an
// entry name.
package vpath

import (
	"os"
	"path/filepath"
	"strings"
)

// ToSlashLower converts backslashes to forward slashes and lowercases
// the ASCII letters in s. Non-ASCII bytes pass through unchanged.
func ToSlashLower(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			c = '/'
		} else if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// TrimLeadingSlashes removes any leading '/' characters.
func TrimLeadingSlashes(s string) string {
	return strings.TrimLeft(s, "/")
}

// Normalize applies the canonical virtual-path form: slash-normalized,
// lowercased, and stripped of leading slashes.
func Normalize(s string) string {
	return TrimLeadingSlashes(ToSlashLower(s))
}

// ToOS converts a normalized forward-slash virtual path to the host
// platform's path separator, preserving case.
func ToOS(s string) string {
	if filepath.Separator == '/' {
		return s
	}
	return strings.ReplaceAll(s, "/", string(filepath.Separator))
}

// proceduralPrefixes lists the recognized engine macro-texture forms;
// each is matched case-insensitively against the start of the (already
// slash-normalized) path.
var proceduralPrefixes = []string{
	"#(argb,",
	"#(ai,",
	"#(rgb,",
	"#(a,",
	"#(l,",
}

// IsProceduralTexture reports whether s names a generated/procedural
// texture (e.g. "#(argb,8,8,3)color(1,1,1,1,ca)") rather than a file
// path. These are skipped by the index and by texture resolution.
func IsProceduralTexture(s string) bool {
	s = ToSlashLower(s)
	if strings.HasPrefix(s, "#(") {
		return true
	}
	for _, p := range proceduralPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Join concatenates a normalized prefix and a normalized relative entry
// name with a single separating slash, matching the resolver's
// recomposition invariant (normalize(prefix) + '/' + entry ==
// normalize(full_path)).
func Join(prefix, entry string) string {
	prefix = strings.TrimRight(Normalize(prefix), "/")
	entry = TrimLeadingSlashes(entry)
	if prefix == "" {
		return entry
	}
	if entry == "" {
		return prefix
	}
	return prefix + "/" + entry
}

// FindFileCI walks root case-insensitively to locate rel (given with
// forward slashes) and returns the real on-disk path if found.
func FindFileCI(root, rel string) (string, bool) {
	parts := strings.Split(strings.Trim(rel, "/"), "/")
	cur := root
	for i, part := range parts {
		entries, err := os.ReadDir(cur)
		if err != nil {
			return "", false
		}
		found := false
		wantLower := strings.ToLower(part)
		for _, e := range entries {
			if strings.ToLower(e.Name()) == wantLower {
				cur = filepath.Join(cur, e.Name())
				found = true
				break
			}
		}
		if !found {
			return "", false
		}
		if i == len(parts)-1 {
			return cur, true
		}
	}
	return cur, true
}

// BasenameNoExt returns the filename component of path with its
// extension removed, accepting either slash style.
func BasenameNoExt(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		path = path[idx+1:]
	}
	if dot := strings.LastIndexByte(path, '.'); dot >= 0 {
		path = path[:dot]
	}
	return path
}

// GlobToLike translates a '*'/'?' glob pattern to a SQL LIKE pattern
// using '%'/'_' as wildcards, escaping any existing LIKE metacharacters
// (and the escape character itself) with backslash.
func GlobToLike(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
