package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RuleKind selects what kind of filesystem entry satisfies a rule.
type RuleKind string

const (
	KindExists    RuleKind = "exists"     // anything at the path
	KindFile      RuleKind = "file"       // a regular file
	KindDir       RuleKind = "dir"        // a directory
	KindParentDir RuleKind = "parent_dir" // the containing directory (output paths)
)

// Rule decides whether a path is acceptable for one field type.
type Rule struct {
	Kind RuleKind

	// Marker is a path relative to the checked path that must also exist,
	// e.g. "Pack/Dungeon000.pack" inside a game folder.
	Marker string

	// Glob is matched relative to the checked path; at least MinMatches
	// entries (default 1) must match.
	Glob       string
	MinMatches int
}

// DefaultRule accepts any existing entry.
var DefaultRule = Rule{Kind: KindExists}

// Check evaluates the rule against path. Missing paths are (false, nil);
// only unexpected stat or glob failures return an error.
func (r Rule) Check(path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	target := path
	if r.Kind == KindParentDir {
		target = filepath.Dir(path)
	}

	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", target, err)
	}

	switch r.Kind {
	case KindFile:
		if !info.Mode().IsRegular() {
			return false, nil
		}
	case KindDir, KindParentDir:
		if !info.IsDir() {
			return false, nil
		}
	case KindExists, "":
	default:
		return false, fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	if r.Marker != "" {
		if _, err := os.Stat(filepath.Join(path, filepath.FromSlash(r.Marker))); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("stat marker: %w", err)
		}
	}

	if r.Glob != "" {
		matches, err := filepath.Glob(filepath.Join(path, filepath.FromSlash(r.Glob)))
		if err != nil {
			return false, fmt.Errorf("glob %q: %w", r.Glob, err)
		}
		need := r.MinMatches
		if need <= 0 {
			need = 1
		}
		if len(matches) < need {
			return false, nil
		}
	}

	return true, nil
}

// RuleSet maps field types to rules.
type RuleSet map[string]Rule

// Lookup returns the rule for fieldType: an exact key first, otherwise the
// longest key contained in fieldType (so "game_dir_nx" uses "game_dir"),
// otherwise DefaultRule.
func (rs RuleSet) Lookup(fieldType string) Rule {
	if r, ok := rs[fieldType]; ok {
		return r
	}
	best := ""
	for key := range rs {
		if key == "" || !strings.Contains(fieldType, key) {
			continue
		}
		if len(key) > len(best) || (len(key) == len(best) && key < best) {
			best = key
		}
	}
	if best != "" {
		return rs[best]
	}
	return DefaultRule
}
