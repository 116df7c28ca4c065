package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	deckLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	deckParser = participle.MustBuild[Deck](
		participle.Lexer(deckLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
		participle.UseLookahead(2),
	)
)

// Deck is the root AST node of a deck file: a named, versioned set of card templates.
type Deck struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'deck' @Ident"`
	Version string         `parser:"@Ident"`
	Cards   []*Card        `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Card describes one card template.
type Card struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Name string         `parser:"'card' @Ident"`
	Body *Block         `parser:"@@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block (assignment or nested element).
type Statement struct {
	Assignment *Assignment `parser:"  @@"`
	Element    *Element    `parser:"| @@"`
}

// Assignment uses colon syntax (key: value...).
type Assignment struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Key    string         `parser:"@Ident ':'"`
	Values []*Atom        `parser:"@@+"`
}

// Element is a named sub-block with optional arguments, eg `text title { ... }`
// or `when prefix "For:" { ... }`.
type Element struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Kind string         `parser:"@Ident"`
	Args []*Atom        `parser:"@@*"`
	Body *Block         `parser:"Newline* @@"`
}

// Atom is a single literal value.
type Atom struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the literal as written (strings unquoted).
func (a *Atom) Text() string {
	switch {
	case a == nil:
		return ""
	case a.String != nil:
		return string(*a.String)
	case a.Number != nil:
		return *a.Number
	case a.Color != nil:
		return *a.Color
	case a.Ident != nil:
		return *a.Ident
	default:
		return ""
	}
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses deck content from an io.Reader.
func Parse(r io.Reader) (*Deck, error) {
	return deckParser.Parse("", r)
}

// ParseString parses deck content from a string.
func ParseString(input string) (*Deck, error) {
	return deckParser.ParseString("", input)
}
