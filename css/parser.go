package css

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:     make([]Item, 0),
		Warnings:  make([]string, 0),
		variables: make(map[string]Value),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	sheet.Items = p.parseItems(parser, sheet)

	p.log.Debug("Parsed CSS", zap.Int("items", len(sheet.Items)), zap.Int("variables", len(sheet.variables)),
		zap.Int("warnings", len(sheet.Warnings)))
	return sheet
}

// parseItems collects rules and at-rules until end of input or end of the
// enclosing at-rule block.
func (p *Parser) parseItems(parser *css.Parser, sheet *Stylesheet) []Item {
	var items []Item
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				p.warn(sheet, parser.Err())
				continue
			}
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.warn(sheet, err)
			}
			return items

		case css.EndAtRuleGrammar:
			return items

		case css.AtRuleGrammar:
			// @import, @charset and friends, no block
			items = append(items, Item{AtRule: &AtRule{
				Name:    string(data),
				Prelude: joinTokens(parser.Values()),
			}})

		case css.BeginAtRuleGrammar:
			items = append(items, Item{AtRule: p.parseAtRule(parser, sheet, string(data))})

		case css.BeginRulesetGrammar:
			rule := &Rule{Selector: joinTokens(parser.Values())}
			rule.Declarations = p.parseDeclarations(parser, sheet, isRoot(rule.Selector))
			items = append(items, Item{Rule: rule})
		}
	}
}

// parseAtRule parses block of an at-rule according to its kind.
func (p *Parser) parseAtRule(parser *css.Parser, sheet *Stylesheet, name string) *AtRule {
	ar := &AtRule{
		Name:    name,
		Prelude: joinTokens(parser.Values()),
		Block:   true,
	}

	switch atRuleKind(name) {
	case "media", "supports", "document", "keyframes", "layer":
		ar.Items = p.parseItems(parser, sheet)
	case "font-face", "page":
		ar.Declarations = p.parseDeclarations(parser, sheet, false)
	default:
		ar.Raw = p.collectRaw(parser)
	}

	p.log.Debug("Parsed @-rule", zap.String("rule", name), zap.String("prelude", ar.Prelude))
	return ar
}

// collectRaw gathers tokens of unknown at-rule block verbatim.
func (p *Parser) collectRaw(parser *css.Parser) string {
	var sb strings.Builder
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return strings.TrimSpace(sb.String())
		default:
			sb.Write(data)
		}
	}
}

// parseDeclarations parses property declarations until end of the block.
// Custom properties are kept as stylesheet variables when block belongs to
// :root, dropped otherwise.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet, root bool) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				p.warn(sheet, parser.Err())
				continue
			}
			return decls

		case css.EndRulesetGrammar, css.EndAtRuleGrammar:
			return decls

		case css.DeclarationGrammar:
			if d, ok := newDeclaration(string(data), parser.Values()); ok {
				decls = append(decls, d)
			}

		case css.CustomPropertyGrammar:
			if !root {
				continue
			}
			var raw []byte
			for _, t := range parser.Values() {
				raw = append(raw, t.Data...)
			}
			sheet.variables[string(data)] = ParseValue(string(raw))

		case css.BeginAtRuleGrammar:
			// nested at-rules inside style rules are not supported by mail clients
			p.log.Debug("Skipping nested @-rule", zap.String("rule", string(data)))
			p.skipAtRuleBlock(parser)
		}
	}
}

// ParseDeclarations parses content of inline style attribute.
func ParseDeclarations(style string) []Declaration {
	var decls []Declaration

	parser := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				continue
			}
			return decls

		case css.DeclarationGrammar:
			if d, ok := newDeclaration(string(data), parser.Values()); ok {
				decls = append(decls, d)
			}
		}
	}
}

// Lookup returns value of the last declaration of property, important
// declarations win.
func Lookup(decls []Declaration, property string) (Value, bool) {
	var (
		found     Value
		ok        bool
		important bool
	)
	for _, d := range decls {
		if d.Property != property || (important && !d.Important) {
			continue
		}
		found, ok, important = d.Value, true, d.Important
	}
	return found, ok
}

// ParseValue parses standalone property value.
func ParseValue(s string) Value {
	lexer := css.NewLexer(parse.NewInputString(strings.TrimSpace(s)))

	var tokens []css.Token
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt == css.CommentToken {
			continue
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: bytes.Clone(data)})
	}
	return parsePropertyValue(tokens)
}

// newDeclaration builds declaration from parser tokens stripping trailing
// !important.
func newDeclaration(name string, tokens []css.Token) (Declaration, bool) {
	d := Declaration{Property: strings.ToLower(name)}

	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end > 0 && tokens[end-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[end-1].Data), "important") {
		i := end - 2
		for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
			i--
		}
		if i >= 0 && tokens[i].TokenType == css.DelimToken && string(tokens[i].Data) == "!" {
			d.Important = true
			end = i
		}
	}

	d.Value = parsePropertyValue(tokens[:end])
	if d.Value.Raw == "" {
		return d, false
	}
	return d, true
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	// trailing whitespace does not count
	for len(tokens) > 0 && tokens[len(tokens)-1].TokenType == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return Value{}
	}

	val := Value{Raw: joinTokens(tokens)}

	if len(tokens) == 1 {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		case css.HashToken:
			// Color value
			val.Keyword = string(t.Data)
		default:
			val.Keyword = val.Raw
		}
		return val
	}

	// Multi-value properties and functions - store as keyword with raw value
	val.Keyword = val.Raw
	return val
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// joinTokens rebuilds text from tokens, whitespace runs become single space.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if parser.HasParseError() {
				continue
			}
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func (p *Parser) warn(sheet *Stylesheet, err error) {
	sheet.Warnings = append(sheet.Warnings, err.Error())
	p.log.Debug("CSS parse error", zap.Error(err))
}

// atRuleKind returns at-rule name without @ and vendor prefix.
func atRuleKind(name string) string {
	name = strings.TrimPrefix(strings.ToLower(name), "@")
	if strings.HasPrefix(name, "-") {
		if i := strings.IndexByte(name[1:], '-'); i != -1 {
			name = name[i+2:]
		}
	}
	return name
}

func isRoot(selector string) bool {
	for _, s := range splitSelectorGroup(selector) {
		if s == ":root" || s == "html" {
			return true
		}
	}
	return false
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
