/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package lexer

import (
	"strings"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

func (lx *Lexer) peek() byte {
	return lx.src[lx.pos]
}

func (lx *Lexer) peekAt(off int) byte {
	if lx.pos+off >= len(lx.src) {
		return nul
	}
	return lx.src[lx.pos+off]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentRest(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '.'
}

func (lx *Lexer) scanNumber() {
	start := lx.pos
	for isDigit(lx.peek()) || lx.peek() == '.' {
		lx.pos++
	}
	text := lx.src[start:lx.pos]
	if strings.Count(text, ".") > 1 {
		diag.Fatal(lx.line, "invalid numeric constant: more than one decimal point")
	}
	dtype := symtab.Int
	if dot := strings.IndexByte(text, '.'); dot >= 0 {
		frac := len(text) - dot - 1
		if frac <= 7 {
			dtype = symtab.Float
		} else {
			dtype = symtab.Double
		}
	}
	id := lx.table.Define(text, dtype, symtab.Meta{Kind: symtab.Constant})
	lx.emit(token.NewSymbol(token.Number, id, lx.line))
}

// scanQuoted handles both '"'- and '\''-delimited literals. A literal
// whose body is a single character is typed char; anything longer
// (including the empty string) is typed string, matching the original
// compiler's rule (spec §4.2).
func (lx *Lexer) scanQuoted(quote byte) {
	startLine := lx.line
	lx.pos++ // consume opening quote
	var body strings.Builder
	for {
		c := lx.peek()
		if c == nul {
			diag.Fatal(startLine, "unterminated string")
		}
		if c == '\n' {
			diag.Fatal(startLine, "newline in string")
		}
		if c == quote {
			lx.pos++
			break
		}
		if c == '\\' && lx.peekAt(1) == quote {
			body.WriteByte(quote)
			lx.pos += 2
			continue
		}
		body.WriteByte(c)
		lx.pos++
	}
	text := body.String()
	dtype := symtab.StringT
	surface := `"` + text + `"`
	kind := token.String
	if len(text) == 1 {
		dtype = symtab.Char
		surface = `'` + text + `'`
	}
	id := lx.table.Define(surface, dtype, symtab.Meta{Kind: symtab.Constant})
	lx.emit(token.NewSymbol(kind, id, startLine))
}

func (lx *Lexer) scanIdentifier() {
	start := lx.pos
	for isIdentRest(lx.peek()) {
		lx.pos++
	}
	text := lx.src[start:lx.pos]

	if kw, ok := token.Keywords[text]; ok {
		lx.emit(token.New(kw, lx.line))
		return
	}
	if text == "true" || text == "false" {
		id := lx.table.Define(text, symtab.BoolT, symtab.Meta{Kind: symtab.Constant})
		lx.emit(token.NewSymbol(token.Bool, id, lx.line))
		return
	}
	if cname, ok := mathConstants[text]; ok {
		id := lx.table.Define(cname, symtab.Double, symtab.Meta{Kind: symtab.Constant})
		lx.emit(token.NewSymbol(token.Number, id, lx.line))
		return
	}
	if lx.peek() == '(' && cTypeNames[text] {
		lx.emit(token.Token{Kind: token.TypeCast, Raw: text, Line: lx.line})
		return
	}
	if cReservedWords[text] {
		diag.Fatal(lx.line, "%q is a reserved C keyword and cannot be used as an identifier here", text)
	}
	id := lx.table.Intern(text)
	lx.emit(token.NewSymbol(token.ID, id, lx.line))
}

func (lx *Lexer) scanLineComment() {
	start := lx.pos
	for lx.peek() != '\n' && lx.peek() != nul {
		lx.pos++
	}
	lx.emit(token.Token{Kind: token.LineComment, Raw: lx.src[start:lx.pos], Line: lx.line})
}

func (lx *Lexer) scanBlockComment() {
	startLine := lx.line
	start := lx.pos
	lx.pos += 2
	for {
		if lx.peek() == nul {
			diag.Fatal(startLine, "unterminated block comment")
		}
		if lx.peek() == '*' && lx.peekAt(1) == '/' {
			lx.pos += 2
			break
		}
		if lx.peek() == '\n' {
			lx.line++
		}
		lx.pos++
	}
	lx.emit(token.Token{Kind: token.BlockComment, Raw: lx.src[start:lx.pos], Line: startLine})
}

func (lx *Lexer) openBracket(c byte) {
	lx.brackets = append(lx.brackets, c)
	lx.emitBracketToken(c)
}

func (lx *Lexer) closeBracket(c byte) {
	want := matchingOpen(c)
	if len(lx.brackets) == 0 || lx.brackets[len(lx.brackets)-1] != want {
		diag.Fatal(lx.line, "unbalanced %q", string(c))
	}
	lx.brackets = lx.brackets[:len(lx.brackets)-1]
	lx.emitBracketToken(c)
}

func matchingOpen(close byte) byte {
	switch close {
	case ')':
		return '('
	case '}':
		return '{'
	case ']':
		return '['
	}
	return 0
}

func (lx *Lexer) emitBracketToken(c byte) {
	var kind token.Kind
	switch c {
	case '(':
		kind = token.LeftParen
	case ')':
		kind = token.RightParen
	case '{':
		kind = token.LeftBrace
	case '}':
		kind = token.RightBrace
	case '[':
		kind = token.LeftBracket
	case ']':
		kind = token.RightBracket
	}
	line := lx.line
	lx.pos++
	lx.tokens = append(lx.tokens, token.New(kind, line))
	if kind == token.RightParen {
		lx.maybeCallEnd(token.New(token.RightParen, line))
	}
}

// operator table: longest match first, as required by spec §4.2.
type opRule struct {
	surface string
	kind    token.Kind
}

var operators = []opRule{
	{"==", token.Equal},
	{"!=", token.NotEqual},
	{">=", token.GreaterThanEqual},
	{"<=", token.LessThanEqual},
	{"+=", token.PlusEqual},
	{"++", token.Increment},
	{"-=", token.MinusEqual},
	{"--", token.Decrement},
	{"*=", token.MultiplyEqual},
	{"**", token.Power},
	{"/=", token.DivideEqual},
	{"%=", token.ModulusEqual},
	{"<<", token.LeftShift},
	{">>", token.RightShift},
	{"&&", token.And},
	{"||", token.Or},
	{"=", token.Assignment},
	{">", token.GreaterThan},
	{"<", token.LessThan},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Multiply},
	{"/", token.Divide},
	{"%", token.Modulus},
	{"&", token.BitwiseAnd}, // address_of resolved below
	{"|", token.BitwiseOr},
	{"^", token.BitwiseXor},
	{",", token.Comma},
	{":", token.Colon},
}

func (lx *Lexer) scanOperator() {
	line := lx.line
	for _, rule := range operators {
		if lx.hasPrefix(rule.surface) {
			kind := rule.kind
			if rule.surface == "&" && !lx.precededByOperand() {
				kind = token.AddressOf
			}
			lx.pos += len(rule.surface)
			lx.tokens = append(lx.tokens, token.New(kind, line))
			return
		}
	}
	diag.Fatal(line, "unexpected character %q", string(lx.peek()))
}

func (lx *Lexer) hasPrefix(s string) bool {
	if lx.pos+len(s) > len(lx.src) {
		return false
	}
	return lx.src[lx.pos:lx.pos+len(s)] == s
}

// precededByOperand resolves the ambiguous '&': it is address_of unless
// the previous token was a number or identifier, in which case it is
// bitwise_and (spec §4.2).
func (lx *Lexer) precededByOperand() bool {
	if len(lx.tokens) == 0 {
		return false
	}
	switch lx.tokens[len(lx.tokens)-1].Kind {
	case token.Number, token.ID:
		return true
	}
	return false
}

// scanRawLine consumes one whole line verbatim while in BEGIN_C/END_C raw
// mode, emitting it as a RAW_C token unless it is the closing END_C.
func (lx *Lexer) scanRawLine() {
	start := lx.pos
	for lx.peek() != '\n' && lx.peek() != nul {
		lx.pos++
	}
	line := lx.src[start:lx.pos]
	if lx.peek() == '\n' {
		lx.pos++
	}
	if strings.TrimSpace(line) == "END_C" {
		lx.rawMode = false
		lx.line++
		return
	}
	lx.tokens = append(lx.tokens, token.NewRaw(line, lx.line))
	lx.line++
}
