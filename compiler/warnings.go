package compiler

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Warning is recoverable problem, compilation continues after it.
type Warning struct {
	Kind    WarningKind
	Tag     string
	Token   string
	Message string
}

func (w Warning) String() string {
	if w.Token == "" {
		return fmt.Sprintf("%s: <%s> %s", w.Kind, w.Tag, w.Message)
	}
	return fmt.Sprintf("%s: <%s class=%q> %s", w.Kind, w.Tag, w.Token, w.Message)
}

func (c *Compiler) warn(kind WarningKind, el *html.Node, token, msg string) {
	if c.quiet {
		return
	}
	w := Warning{Kind: kind, Tag: el.Data, Token: token, Message: msg}
	c.warnings = append(c.warnings, w)
	c.log.Warn(msg, zap.Stringer("kind", kind), zap.String("tag", w.Tag), zap.String("token", token))
}
