package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Rule permits additional markup on a policy under construction.
type Rule func(p *bluemonday.Policy)

// Allowlist is an immutable set of rules layered over the bluemonday UGC
// policy. Derived allowlists are built by union and never modify their parent.
type Allowlist struct {
	name  string
	rules []Rule
}

// BaseAllowlist is the general purpose safe-HTML allowlist.
func BaseAllowlist() Allowlist {
	return Allowlist{name: "base"}
}

// Name identifies the allowlist in logs.
func (a Allowlist) Name() string { return a.name }

// Union returns a new allowlist holding a's rules followed by every group.
func (a Allowlist) Union(name string, groups ...[]Rule) Allowlist {
	n := len(a.rules)
	for _, g := range groups {
		n += len(g)
	}
	rules := make([]Rule, 0, n)
	rules = append(rules, a.rules...)
	for _, g := range groups {
		rules = append(rules, g...)
	}
	return Allowlist{name: name, rules: rules}
}

// Policy compiles the allowlist. The returned policy must not be modified;
// bluemonday policies are safe for concurrent Sanitize calls once built.
func (a Allowlist) Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	for _, rule := range a.rules {
		rule(p)
	}
	return p
}

var (
	checkboxType  = regexp.MustCompile(`^checkbox$`)
	booleanAttr   = regexp.MustCompile(`^(|checked|disabled)$`)
	alignValue    = regexp.MustCompile(`^(left|right|center)$`)
	footnoteIDRef = regexp.MustCompile(`^fn(ref)?\d*[:\-]?[\w\-]*$`)

	// highlightClasses matches the class lists written by the code renderer
	// and chroma. Anything else is dropped from commenter markup.
	highlightClasses = regexp.MustCompile(`^(?:hl-(?:light|dark)-[\w-]+|highlight(?:-light|-dark)?|code-block|language-[\w+#-]+)(?: (?:hl-(?:light|dark)-[\w-]+|highlight(?:-light|-dark)?|code-block|language-[\w+#-]+))*$`)
)

// highlightRules admit the markup produced for fenced code blocks.
var highlightRules = []Rule{
	func(p *bluemonday.Policy) {
		p.AllowElements("div", "pre", "code", "span")
		p.AllowAttrs("class").Matching(highlightClasses).OnElements("div", "pre", "code", "span")
		p.AllowAttrs("tabindex").Matching(bluemonday.Integer).OnElements("pre")
	},
	func(p *bluemonday.Policy) {
		// Inline chroma styles use these properties only.
		p.AllowStyles("color", "background-color", "font-weight", "font-style",
			"text-decoration", "display", "white-space", "word-break").OnElements("pre", "code", "span")
	},
}

// gfmRules admit the markup produced by the GFM extensions.
var gfmRules = []Rule{
	func(p *bluemonday.Policy) {
		p.AllowTables()
		p.AllowElements("del")
		p.AllowAttrs("align").Matching(alignValue).OnElements("th", "td")
	},
	func(p *bluemonday.Policy) {
		p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
		p.AllowAttrs("checked", "disabled").Matching(booleanAttr).OnElements("input")
	},
}

// authorRules admit markup that only vetted authors may use.
var authorRules = []Rule{
	func(p *bluemonday.Policy) {
		p.AllowElements("kbd", "ins")
		p.AllowAttrs("align").Matching(alignValue).OnElements("img", "p", "div")
		p.AllowAttrs("id").Matching(footnoteIDRef).OnElements("sup", "li", "a")
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a", "p", "img", "figure")
	},
}

// PublicAllowlist is used for comments and replies.
func PublicAllowlist() Allowlist {
	return BaseAllowlist().Union("public-comment", highlightRules, gfmRules)
}

// TrustedAllowlist is applied to author content only when trusted
// sanitizing is switched on.
func TrustedAllowlist() Allowlist {
	return PublicAllowlist().Union("trusted-author", authorRules)
}
