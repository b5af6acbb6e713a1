package keys

import "strings"

// Default is the namespace used when neither the store nor the options provide one.
const Default = "mikro"

// Sep separates the namespace from the logical key.
const Sep = ":"

// Namespace partitions a shared key space. The zero value is not useful; use Resolve.
type Namespace struct {
	ns    string
	match string
}

// Resolve picks the namespace once: a prefix the store already applies wins and no
// default is injected on top of it, then the configured prefix, then Default.
func Resolve(storePrefix, configured string) Namespace {
	ns := trim(storePrefix)
	if ns == "" {
		ns = trim(configured)
	}
	if ns == "" {
		ns = Default
	}
	return Namespace{ns: ns, match: escapeGlob(ns) + Sep + "*"}
}

func (n Namespace) String() string { return n.ns }

// Key returns "<ns>:<logical>".
func (n Namespace) Key(logical string) string {
	return n.ns + Sep + logical
}

// Match returns the SCAN MATCH pattern covering every key of the namespace.
// Glob metacharacters inside the namespace are escaped so "a*" never matches "ab:x".
func (n Namespace) Match() string { return n.match }

func trim(p string) string {
	return strings.TrimSuffix(strings.TrimSpace(p), Sep)
}

func escapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
