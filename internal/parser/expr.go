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

package parser

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

// exprResult is what the expression sub-parser returns: the rendered C
// text and its type-widening precedence (spec §4.3: 0=string-const
// 1=char* 2=char 3=int 4=float 5=double 6=bool). prec is -1 when the
// expression's type cannot be determined (e.g. it mentions only `var`
// identifiers).
type exprResult struct {
	text string
	prec int
}

// binding powers, low to high. Power ('**') binds tighter than everything
// and is right-associative; it is rewritten to pow(a,b) rather than
// emitted as an infix C operator, since C has no exponentiation operator.
var binding = map[token.Kind]int{
	token.Or:               1,
	token.And:              2,
	token.BitwiseOr:        3,
	token.BitwiseXor:       4,
	token.BitwiseAnd:       5,
	token.Equal:            6,
	token.NotEqual:         6,
	token.LessThan:         7,
	token.GreaterThan:      7,
	token.LessThanEqual:    7,
	token.GreaterThanEqual: 7,
	token.LeftShift:        8,
	token.RightShift:       8,
	token.Plus:             9,
	token.Minus:            9,
	token.Multiply:         10,
	token.Divide:           10,
	token.Modulus:          10,
}

var opText = map[token.Kind]string{
	token.Or: "||", token.And: "&&", token.BitwiseOr: "|", token.BitwiseXor: "^",
	token.BitwiseAnd: "&", token.Equal: "==", token.NotEqual: "!=",
	token.LessThan: "<", token.GreaterThan: ">", token.LessThanEqual: "<=",
	token.GreaterThanEqual: ">=", token.LeftShift: "<<", token.RightShift: ">>",
	token.Plus: "+", token.Minus: "-", token.Multiply: "*", token.Divide: "/",
	token.Modulus: "%",
}

// parseExpr parses a maximal expression starting at the current position
// and returns its rendered text and type precedence. It stops before a
// newline, call_end, comma, colon, or any closing bracket, leaving that
// token for the caller.
func (p *Parser) parseExpr() exprResult {
	return p.parseBinary(0)
}

func (p *Parser) parseBinary(minBp int) exprResult {
	left := p.parseUnary()
	for {
		k := p.peek().Kind
		if k == token.Power {
			// collect the whole a ** b ** c chain, then fold it from the right
			operands := []exprResult{left}
			for p.peek().Kind == token.Power {
				p.advance()
				operands = append(operands, p.parseUnary())
			}
			right := operands[len(operands)-1]
			for i := len(operands) - 2; i >= 0; i-- {
				right = exprResult{text: fmt.Sprintf("pow(%s, %s)", operands[i].text, right.text), prec: maxPrec(operands[i].prec, right.prec)}
			}
			left = right
			continue
		}
		bp, ok := binding[k]
		if !ok || bp < minBp {
			return left
		}
		p.advance()
		right := p.parseBinary(bp + 1)
		left = exprResult{text: fmt.Sprintf("%s %s %s", left.text, opText[k], right.text), prec: maxPrec(left.prec, right.prec)}
	}
}

// maxPrec implements spec §4.3's "maximum precedence of any contributing
// non-string operand" rule: string-const (0) operands are ignored unless
// every operand is a string, in which case the result stays string-const.
func maxPrec(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	if a == 0 && b == 0 {
		return 0
	}
	m := a
	if a == 0 {
		m = b
	} else if b != 0 && b > a {
		m = b
	}
	return m
}

func (p *Parser) parseUnary() exprResult {
	switch p.peek().Kind {
	case token.Minus:
		p.advance()
		v := p.parseUnary()
		return exprResult{text: "-" + v.text, prec: v.prec}
	case token.AddressOf:
		p.advance()
		v := p.parseUnary()
		return exprResult{text: "&" + v.text, prec: v.prec}
	case token.Multiply:
		p.advance()
		v := p.parseUnary()
		return exprResult{text: "*" + v.text, prec: v.prec}
	case token.Increment:
		p.advance()
		v := p.parseUnary()
		return exprResult{text: "++" + v.text, prec: v.prec}
	case token.Decrement:
		p.advance()
		v := p.parseUnary()
		return exprResult{text: "--" + v.text, prec: v.prec}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() exprResult {
	e := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.Increment:
			p.advance()
			e = exprResult{text: e.text + "++", prec: e.prec}
		case token.Decrement:
			p.advance()
			e = exprResult{text: e.text + "--", prec: e.prec}
		case token.LeftBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RightBracket, "']'")
			e = exprResult{text: fmt.Sprintf("%s[%s]", e.text, idx.text), prec: e.prec}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() exprResult {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.advance()
		entry := p.table.Get(t.ID)
		return exprResult{text: entry.Value, prec: entry.Type.Precedence()}
	case token.String:
		p.advance()
		entry := p.table.Get(t.ID)
		return exprResult{text: entry.Value, prec: symtab.StringT.Precedence()}
	case token.Bool:
		p.advance()
		entry := p.table.Get(t.ID)
		return exprResult{text: entry.Value, prec: symtab.BoolT.Precedence()}
	case token.ID:
		return p.parseIdentOrCall()
	case token.Input:
		return p.parseInputCall()
	case token.LeftParen:
		p.advance()
		inner := p.parseExpr()
		p.expect(token.RightParen, "')'")
		return exprResult{text: "(" + inner.text + ")", prec: inner.prec}
	case token.TypeCast:
		p.advance()
		p.expect(token.LeftParen, "'(' after cast")
		inner := p.parseExpr()
		p.expect(token.RightParen, "')'")
		return exprResult{text: fmt.Sprintf("(%s)(%s)", t.Raw, inner.text), prec: castPrecedence(t.Raw)}
	case token.SizeOf:
		p.advance()
		p.expect(token.LeftParen, "'(' after size")
		inner := p.parseExpr()
		p.expect(token.RightParen, "')'")
		return exprResult{text: fmt.Sprintf("sizeof(%s)", inner.text), prec: symtab.Int.Precedence()}
	case token.Typeof:
		p.advance()
		p.expect(token.LeftParen, "'(' after typeof")
		inner := p.parseExpr()
		p.expect(token.RightParen, "')'")
		return exprResult{text: fmt.Sprintf("%q", cTypeName(inner.prec)), prec: symtab.StringT.Precedence()}
	default:
		diag.Fatal(t.Line, "expected an expression, found %s", t.Kind)
		return exprResult{}
	}
}

// parseIdentOrCall handles a bare identifier, an array index, or a
// function call (ID '(' args ')' call_end).
func (p *Parser) parseIdentOrCall() exprResult {
	t := p.advance()
	name := p.valueOf(t.ID)
	if p.peek().Kind != token.LeftParen {
		id, _ := p.resolve(name)
		var dtype symtab.DataType = symtab.Var
		if id != symtab.NoID {
			dtype = p.table.Get(id).Type
		}
		return exprResult{text: name, prec: dtype.Precedence()}
	}
	// function call
	p.advance() // consume '('
	args, argTypes := p.parseCallArgs()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	rt := p.resolveCallReturnType(name, argTypes)
	return exprResult{text: fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), prec: rt.Precedence()}
}

// parseInputCall parses the `input(...)` pseudo-call, which the lexer
// tokenizes as the Input keyword rather than an identifier.
func (p *Parser) parseInputCall() exprResult {
	line := p.line()
	p.advance() // consume 'input'
	p.expect(token.LeftParen, "'(' after input")
	args, _ := p.parseCallArgs()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	return p.lowerInput(args, line)
}

func (p *Parser) parseCallArgs() ([]string, []symtab.DataType) {
	var args []string
	var types []symtab.DataType
	for p.peek().Kind != token.RightParen {
		e := p.parseExpr()
		args = append(args, e.text)
		types = append(types, precToType(e.prec))
		if p.peek().Kind == token.Comma {
			p.advance()
		} else {
			break
		}
	}
	return args, types
}

// resolveCallReturnType looks up a declared function's return type,
// resolving a pending cross-module deferred type if one is outstanding
// (spec §4.3, Design Note 5).
func (p *Parser) resolveCallReturnType(name string, argTypes []symtab.DataType) symtab.DataType {
	fn, ok := p.funcs[name]
	if !ok {
		diag.Fatal(p.line(), "call to undeclared function %q", name)
	}
	fn.used = true
	if fn.returnType == symtab.NotKnown && fn.pending != nil {
		if rt, resolved := fn.pending(argTypes); resolved {
			fn.returnType = rt
			p.table.SetType(fn.id, rt)
			p.table.Resolve(fn.id)
			fn.pending = nil
		}
	}
	return fn.returnType
}

func precToType(prec int) symtab.DataType {
	switch prec {
	case 0:
		return symtab.StringT
	case 1:
		return symtab.CharPtr
	case 2:
		return symtab.Char
	case 3:
		return symtab.Int
	case 4:
		return symtab.Float
	case 5:
		return symtab.Double
	case 6:
		return symtab.BoolT
	default:
		return symtab.Var
	}
}

func cTypeName(prec int) string {
	switch precToType(prec) {
	case symtab.Int:
		return "int"
	case symtab.Float:
		return "float"
	case symtab.Double:
		return "double"
	case symtab.Char:
		return "char"
	case symtab.CharPtr, symtab.StringT:
		return "char*"
	case symtab.BoolT:
		return "bool"
	default:
		return "void"
	}
}

func castPrecedence(cname string) int {
	switch cname {
	case "int":
		return symtab.Int.Precedence()
	case "float":
		return symtab.Float.Precedence()
	case "double":
		return symtab.Double.Precedence()
	case "char":
		return symtab.Char.Precedence()
	case "bool":
		return symtab.BoolT.Precedence()
	default:
		return symtab.Int.Precedence()
	}
}

// lowerInput rewrites a call to the `input` pseudo-function into the
// sentinel form the generator expands into a printf+scanf pair (spec
// §4.3 "input lowering"). The prompt is the first argument, if any; the
// scanf conversion is not chosen here but by the caller, parseVarDecl,
// from the destination's type.
func (p *Parser) lowerInput(args []string, line int) exprResult {
	prompt := `""`
	if len(args) > 0 {
		prompt = args[0]
	}
	return exprResult{text: "input:" + prompt, prec: -1}
}

// expandFString rewrites `{name}` placeholders in a string literal's
// surface text into printf format specifiers, returning the rewritten
// format literal and the trailing identifier arguments in order (spec
// §4.3 f-string interpolation).
func (p *Parser) expandFString(surface string, line int) (string, []string) {
	inner := strings.TrimSuffix(strings.TrimPrefix(surface, `"`), `"`)
	var out strings.Builder
	var args []string
	out.WriteByte('"')
	i := 0
	for i < len(inner) {
		if inner[i] == '{' {
			end := strings.IndexByte(inner[i:], '}')
			if end < 0 {
				diag.Fatal(line, "unterminated {} in string")
			}
			name := inner[i+1 : i+end]
			id, ok := p.resolve(name)
			if !ok {
				diag.Fatal(line, "undefined identifier %q in string interpolation", name)
			}
			out.WriteString(formatSpec(p.table.Get(id).Type))
			args = append(args, name)
			i += end + 1
			continue
		}
		out.WriteByte(inner[i])
		i++
	}
	out.WriteByte('"')
	return out.String(), args
}

// formatSpec chooses the printf conversion for a resolved datatype (spec
// §4.4; see also Open Question in spec §9 about string-typed indices).
func formatSpec(dtype symtab.DataType) string {
	switch dtype {
	case symtab.Int:
		return "%d"
	case symtab.Float:
		return "%f"
	case symtab.Double:
		return "%lf"
	case symtab.Char:
		return "%c"
	case symtab.CharPtr, symtab.StringT:
		return "%s"
	case symtab.BoolT:
		return "%d"
	default:
		return "%d"
	}
}

// scanfSpec mirrors formatSpec for the `input`-lowering scanf call, and
// reports whether the destination needs an `&` (it does for everything
// except char*/string, spec §4.4).
func scanfSpec(dtype symtab.DataType) (spec string, code byte, needsAddr bool) {
	switch dtype {
	case symtab.Int:
		return "%d", 'i', true
	case symtab.Float:
		return "%f", 'f', true
	case symtab.Double:
		return "%lf", 'd', true
	case symtab.Char:
		return "%c", 'c', true
	default:
		return "%s", 's', false
	}
}
