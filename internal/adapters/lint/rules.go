package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.trai.ch/sitepipe/internal/core/domain"
	"golang.org/x/net/html"
)

// Violation is one rule failure. It formats as "file:line: rule: message".
type Violation struct {
	File    string
	Line    int
	Rule    string
	Message string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", v.File, v.Line, v.Rule, v.Message)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// optionalEnd lists elements whose end tag HTML allows to be omitted.
var optionalEnd = map[string]bool{
	"html": true, "head": true, "body": true, "li": true, "p": true,
	"dt": true, "dd": true, "option": true, "optgroup": true, "rb": true,
	"rt": true, "rtc": true, "rp": true, "tr": true, "td": true, "th": true,
	"thead": true, "tbody": true, "tfoot": true, "colgroup": true,
}

type openTag struct {
	name string
	line int
}

// checker walks one document. enabled reports whether a rule is on.
type checker struct {
	file       string
	enabled    func(string) bool
	line       int
	stack      []openTag
	ids        map[string]int
	sawContent bool
	violations []Violation
}

// Check tokenizes r and returns the violations of every enabled rule, in
// document order. file is only used to label violations.
func Check(file string, r io.Reader, enabled func(rule string) bool) ([]Violation, error) {
	c := &checker{file: file, enabled: enabled, line: 1, ids: make(map[string]int)}
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			break
		}

		// Token lowercases tag names inside the buffer Raw points into.
		raw := bytes.Clone(z.Raw())
		line := c.line
		c.line += bytes.Count(raw, []byte{'\n'})
		c.token(tt, z.Token(), raw, line)
	}

	for _, open := range c.stack {
		if !optionalEnd[open.name] {
			c.report(open.line, domain.LintTagClose, "<%s> is never closed", open.name)
		}
	}
	return c.violations, nil
}

func (c *checker) report(line int, rule, format string, args ...any) {
	if !c.enabled(rule) {
		return
	}
	c.violations = append(c.violations, Violation{
		File:    c.file,
		Line:    line,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) token(tt html.TokenType, tok html.Token, raw []byte, line int) {
	switch tt {
	case html.DoctypeToken:
		c.sawContent = true
	case html.TextToken:
		if len(bytes.TrimSpace(raw)) > 0 {
			c.firstContent(line)
		}
	case html.StartTagToken, html.SelfClosingTagToken:
		c.firstContent(line)
		c.caseOf(raw, line)
		c.attributes(tok, line)
		if tt == html.StartTagToken && !voidElements[tok.Data] {
			c.stack = append(c.stack, openTag{name: tok.Data, line: line})
		}
	case html.EndTagToken:
		c.caseOf(raw, line)
		c.close(tok.Data, line)
	}
}

func (c *checker) firstContent(line int) {
	if c.sawContent {
		return
	}
	c.sawContent = true
	c.report(line, domain.LintDoctypeFirst, "<!DOCTYPE> must come first")
}

func (c *checker) close(name string, line int) {
	if voidElements[name] {
		return
	}
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].name != name {
			continue
		}
		for _, open := range c.stack[i+1:] {
			if !optionalEnd[open.name] {
				c.report(open.line, domain.LintTagClose, "<%s> is never closed", open.name)
			}
		}
		c.stack = c.stack[:i]
		return
	}
	c.report(line, domain.LintTagClose, "</%s> has no matching open tag", name)
}

func (c *checker) attributes(tok html.Token, line int) {
	seen := make(map[string]bool, len(tok.Attr))
	hasAlt := false
	for _, attr := range tok.Attr {
		if seen[attr.Key] {
			c.report(line, domain.LintAttrNoDup, "attribute %q is repeated on <%s>", attr.Key, tok.Data)
		}
		seen[attr.Key] = true

		switch attr.Key {
		case "alt":
			hasAlt = true
		case "id":
			if first, dup := c.ids[attr.Val]; dup {
				c.report(line, domain.LintIDNoDup, "id %q is already used on line %d", attr.Val, first)
			} else {
				c.ids[attr.Val] = line
			}
		}
	}
	if tok.Data == "img" && !hasAlt {
		c.report(line, domain.LintImgReqAlt, "<img> needs an alt attribute")
	}
}

// caseOf checks the tag name as written, since the tokenizer lowercases it.
func (c *checker) caseOf(raw []byte, line int) {
	name := strings.TrimLeft(string(raw), "</")
	if end := strings.IndexAny(name, " \t\r\n/>"); end >= 0 {
		name = name[:end]
	}
	if name != strings.ToLower(name) {
		c.report(line, domain.LintTagNameLowercase, "tag name <%s> must be lowercase", name)
	}
}
