package cdpdriver

import (
	"encoding/json"
	"fmt"

	"github.com/themizzi/storefrontqa/internal/browser"
)

// step is one link of a target chain as the in-page resolver sees it.
type step struct {
	Kind    string `json:"kind"`
	Expr    string `json:"expr"`
	Name    string `json:"name,omitempty"`
	Exact   bool   `json:"exact,omitempty"`
	HasText string `json:"hasText,omitempty"`
	Visible bool   `json:"visible,omitempty"`
	Pick    string `json:"pick,omitempty"`
	Index   int    `json:"index,omitempty"`
}

// chain flattens t into its steps, outermost scope first.
func chain(t browser.Target) []step {
	var steps []step
	if parent, ok := t.Parent(); ok {
		steps = chain(parent)
	}
	s := step{
		Expr:    t.Expr(),
		Name:    t.Name(),
		Exact:   t.Exact(),
		HasText: t.HasText(),
		Visible: t.VisibleOnly(),
	}
	switch t.Kind() {
	case browser.KindText:
		s.Kind = "text"
	case browser.KindRole:
		s.Kind = "role"
	default:
		s.Kind = "css"
	}
	if i, ok := t.Picked(); ok {
		if i < 0 {
			s.Pick = "last"
		} else {
			s.Pick = "nth"
			s.Index = i
		}
	}
	return append(steps, s)
}

// script wraps body so it runs with `els` bound to the elements t resolves to.
func script(t browser.Target, body string) (string, error) {
	encoded, err := json.Marshal(chain(t))
	if err != nil {
		return "", fmt.Errorf("failed to encode target %s: %w", t, err)
	}
	return fmt.Sprintf("(() => {\nconst els = (%s)(%s);\n%s\n})()", resolverJS, encoded, body), nil
}

// resolverJS returns the elements matching a step chain in document order.
// Text steps keep only the innermost matching elements. Role names come from
// aria-label, aria-labelledby, an associated label, a button value, then text.
const resolverJS = `function (chain) {
  const norm = s => (s || '').replace(/\s+/g, ' ').trim();
  const matches = (hay, needle, exact) => {
    hay = norm(hay); needle = norm(needle);
    return exact ? hay === needle : hay.toLowerCase().includes(needle.toLowerCase());
  };
  const visible = el => {
    if (!el.isConnected) return false;
    const s = getComputedStyle(el);
    if (s.visibility === 'hidden' || s.display === 'none') return false;
    const r = el.getBoundingClientRect();
    return r.width > 0 && r.height > 0;
  };
  const roles = {
    button: 'button,input[type=submit],input[type=button],input[type=reset],[role=button]',
    link: 'a[href],[role=link]',
    textbox: 'input:not([type]),input[type=text],input[type=email],input[type=tel],input[type=url],input[type=search],input[type=password],textarea,[role=textbox]',
    heading: 'h1,h2,h3,h4,h5,h6,[role=heading]',
    checkbox: 'input[type=checkbox],[role=checkbox]',
    radio: 'input[type=radio],[role=radio]',
    combobox: 'select,[role=combobox]',
    listitem: 'li,[role=listitem]',
    row: 'tr,[role=row]',
    table: 'table,[role=table]',
    img: 'img[alt],[role=img]'
  };
  const skip = new Set(['SCRIPT', 'STYLE', 'HEAD', 'TITLE', 'NOSCRIPT']);
  const accName = el => {
    const label = el.getAttribute('aria-label');
    if (label) return label;
    const by = el.getAttribute('aria-labelledby');
    if (by) {
      const n = document.getElementById(by);
      if (n) return n.textContent;
    }
    if (el.id) {
      const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
      if (l) return l.textContent;
    }
    if (el.tagName === 'INPUT') {
      if (['submit', 'button', 'reset'].includes(el.type)) return el.value;
      const wrap = el.closest('label');
      return wrap ? wrap.textContent : (el.getAttribute('placeholder') || el.title || '');
    }
    if (el.tagName === 'IMG') return el.alt;
    return el.textContent;
  };
  const query = (root, s) => {
    let out;
    if (s.kind === 'text') {
      const hits = Array.from(root.querySelectorAll('*'))
        .filter(el => !skip.has(el.tagName) && matches(el.textContent, s.expr, s.exact));
      const set = new Set(hits);
      out = hits.filter(el => !Array.from(el.children).some(c => set.has(c)));
    } else if (s.kind === 'role') {
      out = Array.from(root.querySelectorAll(roles[s.expr] || '[role="' + s.expr + '"]'));
      if (s.name) out = out.filter(el => matches(accName(el), s.name, s.exact));
    } else {
      out = Array.from(root.querySelectorAll(s.expr));
    }
    if (s.hasText) out = out.filter(el => matches(el.textContent, s.hasText, false));
    if (s.visible) out = out.filter(visible);
    return out;
  };
  let scope = [document];
  for (const s of chain) {
    const seen = new Set();
    let next = [];
    for (const root of scope) {
      for (const el of query(root, s)) {
        if (!seen.has(el)) { seen.add(el); next.push(el); }
      }
    }
    if (s.pick === 'nth') next = s.index < next.length ? [next[s.index]] : [];
    if (s.pick === 'last') next = next.length ? [next[next.length - 1]] : [];
    scope = next;
  }
  scope.isShown = visible;
  return scope;
}`

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
