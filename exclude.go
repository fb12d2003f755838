package bundle

import (
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

// Action is what an exclusion rule does to a matching entry.
type Action uint8

const (
	// ActionDelete removes the matching file or directory tree.
	ActionDelete Action = iota

	// ActionStrip strips debug symbols from the matching native library in
	// place rather than deleting it.
	ActionStrip
)

// Rule is one entry in the exclusion policy table.
//
// Pattern is a path.Match glob applied to an entry's base name. DirOnly
// restricts the rule to directories. KeepUnder lists directory names whose
// subtrees are exempt from the rule; KeepGlobs lists base-name globs exempt
// from it. Rules that match nothing are no-ops, never errors.
type Rule struct {
	Name      string
	Pattern   string
	Action    Action
	DirOnly   bool
	KeepUnder []string
	KeepGlobs []string
}

// DefaultRules returns the exclusion policy applied to staged bundles.
//
// The table trims artifacts a shipped bundle never needs: bytecode caches,
// tests, docs, locales, type stubs, and the packaging tool itself (the
// distributed artifact never re-installs anything). Consumers can extend or
// replace the table via WithRules without touching the build algorithm.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "bytecode-cache", Pattern: "__pycache__", Action: ActionDelete, DirOnly: true},
		{Name: "bytecode", Pattern: "*.pyc", Action: ActionDelete},
		// mediapipe ships runtime data under tests-named paths; deleting
		// them breaks the dependency. Narrow exception, kept as data.
		{Name: "test-dirs", Pattern: "tests", Action: ActionDelete, DirOnly: true, KeepUnder: []string{"mediapipe"}},
		{Name: "test-files", Pattern: "test_*.py", Action: ActionDelete, KeepUnder: []string{"mediapipe"}},
		{Name: "examples", Pattern: "examples", Action: ActionDelete, DirOnly: true},
		{Name: "docs", Pattern: "docs", Action: ActionDelete, DirOnly: true},
		{Name: "readme", Pattern: "README*", Action: ActionDelete},
		{Name: "license-text", Pattern: "LICENSE*", Action: ActionDelete},
		{Name: "markdown", Pattern: "*.md", Action: ActionDelete},
		{Name: "locales", Pattern: "locale", Action: ActionDelete, DirOnly: true},
		{Name: "locales-alt", Pattern: "locales", Action: ActionDelete, DirOnly: true},
		{Name: "package-metadata", Pattern: "*.dist-info", Action: ActionDelete, DirOnly: true, KeepGlobs: []string{"mediapipe-*.dist-info"}},
		{Name: "type-stubs", Pattern: "*.pyi", Action: ActionDelete},
		{Name: "pip", Pattern: "pip", Action: ActionDelete, DirOnly: true},
		{Name: "setuptools", Pattern: "setuptools", Action: ActionDelete, DirOnly: true},
		{Name: "wheel", Pattern: "wheel", Action: ActionDelete, DirOnly: true},
		{Name: "native-debug-symbols", Pattern: "*.so", Action: ActionStrip},
	}
}

// applyRules walks the staging root and applies the exclusion policy.
//
// Deletions are best-effort: removal failures are ignored so a rule that
// races with another deletion stays idempotent. Matched directories are
// removed whole and not descended into.
func applyRules(root string, rules []Rule) error {
	stripTool, _ := exec.LookPath("strip")

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// The entry may have been removed by an earlier directory
			// deletion in this same walk.
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for i := range rules {
			rule := &rules[i]
			if !rule.matches(rel, d.IsDir()) {
				continue
			}
			switch rule.Action {
			case ActionStrip:
				if stripTool != "" && !d.IsDir() {
					stripDebugSymbols(stripTool, p)
				}
			default:
				os.RemoveAll(p)
				if d.IsDir() {
					return fs.SkipDir
				}
			}
			return nil
		}
		return nil
	})
}

// matches reports whether the rule applies to the entry at rel (a
// slash-separated path below the staging root).
func (r *Rule) matches(rel string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}
	base := path.Base(rel)
	ok, err := path.Match(r.Pattern, base)
	if err != nil || !ok {
		return false
	}

	for _, keep := range r.KeepGlobs {
		if kept, _ := path.Match(keep, base); kept {
			return false
		}
	}
	if len(r.KeepUnder) > 0 {
		for _, segment := range strings.Split(path.Dir(rel), "/") {
			for _, keep := range r.KeepUnder {
				if segment == keep {
					return false
				}
			}
		}
	}
	return true
}

// stripDebugSymbols strips a native library in place. Failures are ignored;
// an unstripped library is still a correct bundle member.
func stripDebugSymbols(tool, path string) {
	cmd := exec.Command(tool, "--strip-debug", path)
	cmd.Stdout = nil
	cmd.Stderr = nil
	_ = cmd.Run()
}
