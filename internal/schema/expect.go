// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schema

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/prop"
	"github.com/holomush/propsuite/pkg/validate"
)

// expectLexer tokenises expectation files. Lines starting with # are comments.
var expectLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w.]*`},
	{Name: "Punct", Pattern: `[\[\]=;*]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// ExpectFile is a parsed expectation file.
//
// Grammar: { "expect" name kind "[" ( int | "*" ) "]" [ "required" ] [ "=" string ] ";" }
type ExpectFile struct {
	Decls []*ExpectDecl `parser:"@@*"`
}

// ExpectDecl is one expectation.
type ExpectDecl struct {
	Pos       lexer.Position `parser:""`
	Name      string         `parser:"'expect' @Ident"`
	Kind      string         `parser:"@('int' | 'double' | 'string' | 'pointer')"`
	Dimension string         `parser:"'[' @(Int | '*') ']'"`
	Required  bool           `parser:"@'required'?"`
	Default   *string        `parser:"('=' @String)? ';'"`
}

var expectParser = participle.MustBuild[ExpectFile](
	participle.Lexer(expectLexer),
	participle.Unquote("String"),
)

// ParseExpectations parses expectation source text.
func ParseExpectations(filename, src string) ([]validate.Expectation, error) {
	file, err := expectParser.ParseString(filename, src)
	if err != nil {
		return nil, oops.Code(CodeInvalidExpect).With("file", filename).Wrapf(err, "parse expectations")
	}

	out := make([]validate.Expectation, 0, len(file.Decls))
	seen := make(map[string]lexer.Position, len(file.Decls))
	for _, d := range file.Decls {
		if prev, dup := seen[d.Name]; dup {
			return nil, oops.Code(CodeInvalidExpect).
				With("file", filename).
				With("property", d.Name).
				Errorf("%s: %q already expected at %s", d.Pos, d.Name, prev)
		}
		seen[d.Name] = d.Pos

		exp, err := d.expectation()
		if err != nil {
			return nil, oops.Code(CodeInvalidExpect).With("file", filename).Wrapf(err, "%s", d.Pos)
		}
		out = append(out, exp)
	}
	return out, nil
}

// LoadExpectationsFile reads and parses an expectation file.
func LoadExpectationsFile(path string) ([]validate.Expectation, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code(CodeInvalidExpect).With("path", path).Wrapf(err, "read expectations")
	}
	return ParseExpectations(path, string(data))
}

func (d *ExpectDecl) expectation() (validate.Expectation, error) {
	kind, err := prop.ParseKind(d.Kind)
	if err != nil {
		return validate.Expectation{}, err
	}

	dim := 0
	if d.Dimension != "*" {
		dim, err = strconv.Atoi(d.Dimension)
		if err != nil {
			return validate.Expectation{}, oops.Wrapf(err, "dimension of %q", d.Name)
		}
		if dim == 0 {
			return validate.Expectation{}, oops.With("property", d.Name).Errorf("dimension of %q must be positive; use [*] for variable", d.Name)
		}
	}

	if d.Default != nil {
		if _, err := prop.ParseDefault(kind, dim, *d.Default); err != nil {
			return validate.Expectation{}, oops.With("property", d.Name).Wrap(err)
		}
	}

	return validate.Expectation{
		Name:      d.Name,
		Kind:      kind,
		Dimension: dim,
		Required:  d.Required,
		Default:   d.Default,
	}, nil
}

// FormatExpectation renders exp in the syntax ParseExpectations accepts.
func FormatExpectation(exp validate.Expectation) string {
	dim := "*"
	if exp.Dimension > 0 {
		dim = strconv.Itoa(exp.Dimension)
	}
	s := fmt.Sprintf("expect %s %s[%s]", exp.Name, exp.Kind, dim)
	if exp.Required {
		s += " required"
	}
	if exp.Default != nil {
		s += " = " + strconv.Quote(*exp.Default)
	}
	return s + ";"
}
