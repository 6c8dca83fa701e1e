package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrOutsideRoot is returned when a path resolves outside the working root.
var ErrOutsideRoot = errors.New("path outside working root")

// windowsAbs matches a drive prefix such as "c:" after normalisation.
var windowsAbs = regexp.MustCompile(`^[a-z]:`)

// PathChecker confines relative paths to a fixed working root.
type PathChecker struct {
	root      string
	forbidden []string
}

// NewPathChecker creates a path checker for root. The root must be an
// existing directory; it is canonicalized once and never changes.
func NewPathChecker(root string, policy *SecurityPolicy) (*PathChecker, error) {
	policy = policy.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve working root: %w", err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve working root: %w", err)
	}
	info, err := os.Stat(canonicalRoot)
	if err != nil {
		return nil, fmt.Errorf("stat working root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working root %s is not a directory", canonicalRoot)
	}

	forbidden := make([]string, 0, len(policy.ForbiddenPaths))
	for _, f := range policy.ForbiddenPaths {
		if n := normalize(f); n != "" {
			forbidden = append(forbidden, n)
		}
	}

	return &PathChecker{
		root:      canonicalRoot,
		forbidden: forbidden,
	}, nil
}

// Root returns the canonical working root.
func (pc *PathChecker) Root() string {
	return pc.root
}

// Check decides whether candidate may be accessed.
func (pc *PathChecker) Check(candidate string) Verdict {
	if strings.TrimSpace(candidate) == "" {
		return Deny("empty path")
	}

	// Catch the common traversal idioms before resolving anything
	norm := normalize(candidate)
	if strings.Contains(norm, "..") || strings.HasPrefix(norm, "/") || windowsAbs.MatchString(norm) {
		return Deny("directory traversal is not allowed: %s", candidate)
	}

	for _, fragment := range pc.forbidden {
		if strings.Contains(norm, fragment) {
			return Deny("access to sensitive system path is not allowed: %s", candidate)
		}
	}

	if _, err := pc.Resolve(candidate); err != nil {
		if errors.Is(err, ErrOutsideRoot) {
			return Deny("action would leave the working directory: %s", candidate)
		}
		return Deny("invalid path: %s (%v)", candidate, err)
	}

	return Allow()
}

// Resolve joins candidate onto the root, canonicalizes it and verifies the
// result is the root itself or one of its descendants.
func (pc *PathChecker) Resolve(candidate string) (string, error) {
	joined := filepath.Join(pc.root, candidate)

	canonical, err := resolveSymlinksWalkUp(joined)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", candidate, err)
	}

	if !within(pc.root, canonical) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, candidate)
	}

	return canonical, nil
}

// within compares path components, so /work_other is not inside /work.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// normalize lower-cases p and converts Windows separators.
func normalize(p string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p), `\`, "/"))
}

// maxLinkHops bounds how many dangling links are followed for one path.
const maxLinkHops = 40

// resolveSymlinksWalkUp walks up the directory tree resolving symlinks
// until it finds a path that exists, then rebuilds the path. A dangling
// link is followed to its target, since writing through it lands there.
func resolveSymlinksWalkUp(path string) (string, error) {
	return resolveWalkUp(path, 0)
}

func resolveWalkUp(path string, hops int) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	parent := filepath.Dir(path)
	base := filepath.Base(path)

	if parent == path {
		return path, nil
	}

	resolvedParent, err := resolveWalkUp(parent, hops)
	if err != nil {
		return "", err
	}
	joined := filepath.Join(resolvedParent, base)

	fi, err := os.Lstat(joined)
	if err != nil || fi.Mode()&os.ModeSymlink == 0 {
		return joined, nil
	}

	if hops >= maxLinkHops {
		return "", fmt.Errorf("too many symbolic links: %s", path)
	}
	target, err := os.Readlink(joined)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(resolvedParent, target)
	}
	return resolveWalkUp(target, hops+1)
}
