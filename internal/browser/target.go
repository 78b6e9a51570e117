package browser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the query engine a Target resolves with.
type Kind int

const (
	// KindCSS resolves with a CSS selector.
	KindCSS Kind = iota
	// KindText resolves elements whose text contains (or equals) a string.
	KindText
	// KindRole resolves elements by ARIA role and accessible name.
	KindRole
)

type pick int

const (
	pickAll pick = iota
	pickNth
	pickLast
)

// Target is a lazily resolved reference to zero or more elements on the
// current page. It holds no element handles: every operation re-resolves it
// against the live document.
type Target struct {
	kind    Kind
	expr    string
	name    string
	exact   bool
	hasText string
	visible bool
	pick    pick
	index   int
	parent  *Target
}

// CSS returns a target matching a CSS selector.
func CSS(selector string) Target {
	return Target{kind: KindCSS, expr: selector}
}

// Text returns a target matching elements containing text, case-insensitively.
func Text(text string) Target {
	return Target{kind: KindText, expr: text}
}

// ExactText returns a target matching elements whose whole text equals text.
func ExactText(text string) Target {
	return Target{kind: KindText, expr: text, exact: true}
}

// Role returns a target matching an ARIA role. A non-empty name narrows the
// match to elements whose accessible name contains it.
func Role(role, name string) Target {
	return Target{kind: KindRole, expr: role, name: name}
}

// ExactRole is Role with a case-sensitive whole-name match.
func ExactRole(role, name string) Target {
	return Target{kind: KindRole, expr: role, name: name, exact: true}
}

func (t Target) Kind() Kind      { return t.kind }
func (t Target) Expr() string    { return t.expr }
func (t Target) Name() string    { return t.name }
func (t Target) Exact() bool     { return t.exact }
func (t Target) HasText() string { return t.hasText }

// VisibleOnly reports whether hidden matches are filtered out.
func (t Target) VisibleOnly() bool { return t.visible }

// Parent returns the scope this target is resolved within, if any.
func (t Target) Parent() (Target, bool) {
	if t.parent == nil {
		return Target{}, false
	}
	return *t.parent, true
}

// Picked reports whether the target narrows its matches to a single position.
// index is -1 for the last match.
func (t Target) Picked() (index int, ok bool) {
	switch t.pick {
	case pickNth:
		return t.index, true
	case pickLast:
		return -1, true
	}
	return 0, false
}

// Nth narrows the target to the i-th match, zero based.
func (t Target) Nth(i int) Target {
	t.pick, t.index = pickNth, i
	return t
}

// First narrows the target to its first match.
func (t Target) First() Target { return t.Nth(0) }

// Last narrows the target to its last match.
func (t Target) Last() Target {
	t.pick, t.index = pickLast, 0
	return t
}

// WithText keeps only matches whose text contains s, case-insensitively.
func (t Target) WithText(s string) Target {
	t.hasText = s
	return t
}

// Visible keeps only matches that are currently rendered.
func (t Target) Visible() Target {
	t.visible = true
	return t
}

// Locate returns child resolved within the matches of t.
func (t Target) Locate(child Target) Target {
	scope := t
	if child.parent != nil {
		inner := child.parent.withRoot(scope)
		scope = inner
	}
	child.parent = &scope
	return child
}

func (t Target) withRoot(root Target) Target {
	if t.parent == nil {
		t.parent = &root
		return t
	}
	p := t.parent.withRoot(root)
	t.parent = &p
	return t
}

// Base returns t without its own position pick and visibility filter.
func (t Target) Base() Target {
	t.pick, t.index, t.visible = pickAll, 0, false
	return t
}

// firstIfAll applies the first-match policy to unpicked targets.
func (t Target) firstIfAll() Target {
	if t.pick == pickAll {
		return t.First()
	}
	return t
}

// String renders the target in the selector syntax understood by Parse.
func (t Target) String() string {
	var b strings.Builder
	if t.parent != nil {
		b.WriteString(t.parent.String())
		b.WriteString(" >> ")
	}
	switch t.kind {
	case KindText:
		if t.exact {
			b.WriteString("text=" + strconv.Quote(t.expr))
		} else {
			b.WriteString("text=" + t.expr)
		}
	case KindRole:
		b.WriteString("role=" + t.expr)
		if t.name != "" {
			flag := "i"
			if t.exact {
				flag = "s"
			}
			b.WriteString("[name=" + strconv.Quote(t.name) + flag + "]")
		}
	default:
		b.WriteString(t.expr)
	}
	if t.hasText != "" {
		b.WriteString(":has-text(" + strconv.Quote(t.hasText) + ")")
	}
	if t.visible {
		b.WriteString(" >> visible=true")
	}
	switch t.pick {
	case pickNth:
		b.WriteString(" >> nth=" + strconv.Itoa(t.index))
	case pickLast:
		b.WriteString(" >> nth=-1")
	}
	return b.String()
}

var (
	roleExpr    = regexp.MustCompile(`^role=([a-z]+)(?:\[name=("(?:[^"\\]|\\.)*")\s*([is]?)\])?$`)
	hasTextExpr = regexp.MustCompile(`:has-text\(("(?:[^"\\]|\\.)*")\)$`)
)

// Parse turns a selector string into a Target. Parts are joined with " >> ".
// Each part is one of text=..., role=name[name="..."], nth=N, visible=true,
// or a CSS selector optionally ending in :has-text("...").
func Parse(expr string) (Target, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Target{}, fmt.Errorf("empty selector")
	}
	var (
		cur  Target
		have bool
	)
	for _, part := range strings.Split(expr, ">>") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Target{}, fmt.Errorf("selector %q: empty part", expr)
		}
		switch {
		case strings.HasPrefix(part, "nth="):
			if !have {
				return Target{}, fmt.Errorf("selector %q: nth without a preceding part", expr)
			}
			n, err := strconv.Atoi(strings.TrimPrefix(part, "nth="))
			if err != nil {
				return Target{}, fmt.Errorf("selector %q: %w", expr, err)
			}
			if n < 0 {
				cur = cur.Last()
			} else {
				cur = cur.Nth(n)
			}
			continue
		case part == "visible=true":
			if !have {
				return Target{}, fmt.Errorf("selector %q: visible without a preceding part", expr)
			}
			cur = cur.Visible()
			continue
		}

		next, err := parsePart(part)
		if err != nil {
			return Target{}, fmt.Errorf("selector %q: %w", expr, err)
		}
		if have {
			next = cur.Locate(next)
		}
		cur, have = next, true
	}
	return cur, nil
}

// MustParse is Parse for selectors known to be valid.
func MustParse(expr string) Target {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

func parsePart(part string) (Target, error) {
	switch {
	case strings.HasPrefix(part, "text="):
		v := strings.TrimPrefix(part, "text=")
		if strings.HasPrefix(v, `"`) {
			s, err := strconv.Unquote(v)
			if err != nil {
				return Target{}, err
			}
			return ExactText(s), nil
		}
		if v == "" {
			return Target{}, fmt.Errorf("empty text")
		}
		return Text(v), nil
	case strings.HasPrefix(part, "role="):
		m := roleExpr.FindStringSubmatch(part)
		if m == nil {
			return Target{}, fmt.Errorf("malformed role query %q", part)
		}
		if m[2] == "" {
			return Role(m[1], ""), nil
		}
		name, err := strconv.Unquote(m[2])
		if err != nil {
			return Target{}, err
		}
		if m[3] == "s" {
			return ExactRole(m[1], name), nil
		}
		return Role(m[1], name), nil
	case strings.HasPrefix(part, "css="):
		part = strings.TrimPrefix(part, "css=")
	}

	t := CSS(part)
	if m := hasTextExpr.FindStringSubmatchIndex(part); m != nil {
		text, err := strconv.Unquote(part[m[2]:m[3]])
		if err != nil {
			return Target{}, err
		}
		t = CSS(part[:m[0]]).WithText(text)
	}
	if t.expr == "" {
		return Target{}, fmt.Errorf("empty css selector")
	}
	return t, nil
}
