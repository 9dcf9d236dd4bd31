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
	"strconv"
	"strings"

	"github.com/gmofishsauce/simc/internal/diag"
	"github.com/gmofishsauce/simc/internal/opcode"
	"github.com/gmofishsauce/simc/internal/symtab"
	"github.com/gmofishsauce/simc/internal/token"
)

// parseStatement dispatches on the current token to one statement-level
// parse function. It always either emits at least one opcode or advances
// the cursor, so the driver loop in Parse terminates.
func (p *Parser) parseStatement() {
	p.skipNewlines()
	if p.atEnd() {
		return
	}
	t := p.peek()
	switch t.Kind {
	case token.LineComment:
		p.parseLineComment()
	case token.BlockComment:
		p.parseBlockComment()
	case token.BeginC:
		p.parseRawBlock()
	case token.Print:
		p.parsePrint()
	case token.Var:
		p.parseVarDecl()
	case token.Multiply:
		p.parsePointerAssignStmt()
	case token.Import:
		p.parseImport()
	case token.Main:
		p.parseMain()
	case token.EndMain:
		p.parseEndMain()
	case token.Fun:
		p.parseFuncDecl()
	case token.For:
		p.parseFor()
	case token.While:
		p.parseWhile()
	case token.Do:
		p.parseDoWhile()
	case token.If:
		p.parseIf()
	case token.ElseIf:
		p.parseElseIf()
	case token.Else:
		p.parseElse()
	case token.Switch:
		p.parseSwitch()
	case token.Case:
		p.parseCase()
	case token.Default:
		p.parseDefault()
	case token.Break:
		p.advance()
		p.emit(&opcode.Break{Base: opcode.NewBase(t.Line)})
	case token.Continue:
		p.advance()
		p.emit(&opcode.Continue{Base: opcode.NewBase(t.Line)})
	case token.Return:
		p.parseReturn()
	case token.Exit:
		p.parseExit()
	case token.Struct:
		p.parseStructDecl()
	case token.ID:
		p.parseIdentStatement()
	default:
		diag.Fatal(t.Line, "unexpected token %s", t.Kind)
	}
}

// parseBody consumes a statement list, bracketing it with ScopeBegin/
// ScopeOver opcodes and pushing/popping an identifier scope. A brace-less
// body is a single statement: the scope machine transitions through
// scopeOneLineFuncStart/scopeOneLineFuncEnd and the trailing ScopeOver is
// auto-emitted instead of coming from a '}' token (spec §4.3 scope machine).
func (p *Parser) parseBody() {
	if p.peek().Kind != token.LeftBrace {
		prevState := p.state
		p.state = scopeOneLineFuncStart
		p.pushScope()
		p.emit(&opcode.ScopeBegin{Base: opcode.NewBase(p.line())})
		p.parseStatement()
		p.state = scopeOneLineFuncEnd
		p.emit(&opcode.ScopeOver{Base: opcode.NewBase(p.line())})
		p.popScope()
		p.state = prevState
		return
	}
	p.advance()
	p.pushScope()
	p.emit(&opcode.ScopeBegin{Base: opcode.NewBase(p.line())})
	p.skipNewlines()
	for p.peek().Kind != token.RightBrace && !p.atEnd() {
		p.parseStatement()
		p.skipNewlines()
	}
	p.expect(token.RightBrace, "'}'")
	p.emit(&opcode.ScopeOver{Base: opcode.NewBase(p.line())})
	p.popScope()
}

func (p *Parser) parseLineComment() {
	t := p.advance()
	p.emit(&opcode.SingleLineComment{Base: opcode.NewBase(t.Line), Text: t.Raw})
}

func (p *Parser) parseBlockComment() {
	t := p.advance()
	p.emit(&opcode.MultiLineComment{Base: opcode.NewBase(t.Line), Text: t.Raw})
}

// parseRawBlock consumes a BEGIN_C token followed by a run of RAW_C lines
// (the lexer already dropped the END_C marker itself, spec §4.2).
func (p *Parser) parseRawBlock() {
	p.advance()
	for p.peek().Kind == token.RawC {
		t := p.advance()
		p.emit(&opcode.Raw{Base: opcode.NewBase(t.Line), Text: t.Raw})
	}
}

func (p *Parser) parseImport() {
	line := p.line()
	p.advance()
	nameTok := p.expect(token.ID, "module name after import")
	p.emit(&opcode.Import{Base: opcode.NewBase(line), Name: p.valueOf(nameTok.ID)})
}

func (p *Parser) parseMain() {
	if p.mainSeen {
		diag.Fatal(p.line(), "only one MAIN block is allowed")
	}
	line := p.advance().Line
	p.mainSeen = true
	p.inMain = true
	p.state = scopeMain
	p.emit(&opcode.Main{Base: opcode.NewBase(line)})
}

func (p *Parser) parseEndMain() {
	if !p.inMain {
		diag.Fatal(p.line(), "END_MAIN without matching MAIN")
	}
	line := p.advance().Line
	p.inMain = false
	p.state = scopeGlobal
	p.emit(&opcode.EndMain{Base: opcode.NewBase(line)})
}

func (p *Parser) parsePrint() {
	line := p.line()
	p.advance()
	p.expect(token.LeftParen, "'(' after print")
	var format string
	var args []string
	if p.peek().Kind == token.String {
		tok := p.advance()
		surface := p.table.Get(tok.ID).Value
		format, args = p.expandFString(surface, tok.Line)
	} else {
		e := p.parseExpr()
		format = fmt.Sprintf("%q", formatSpec(precToType(e.prec)))
		args = []string{e.text}
	}
	for p.peek().Kind == token.Comma {
		p.advance()
		e := p.parseExpr()
		args = append(args, e.text)
	}
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.Print{Base: opcode.NewBase(line), Format: format, Args: args})
}

// parseVarDecl parses `var`, possibly with leading `*` pointer markers, an
// array subscript, and/or an initializer (spec §4.3 declarations).
func (p *Parser) parseVarDecl() {
	line := p.line()
	p.advance()
	depth := 0
	for p.peek().Kind == token.Multiply {
		depth++
		p.advance()
	}
	nameTok := p.expect(token.ID, "variable name")
	name := p.valueOf(nameTok.ID)
	id, _ := p.resolve(name)
	entry := p.table.Get(id)

	if p.peek().Kind == token.LeftBracket {
		p.advance()
		sizeText := ""
		if p.peek().Kind != token.RightBracket {
			e := p.parseExpr()
			sizeText = e.text
		}
		p.expect(token.RightBracket, "']'")
		entry.Type = symtab.ArrDeclared
		if p.peek().Kind == token.Assignment {
			p.advance()
			init := p.parseArrayInitializer()
			p.emit(&opcode.ArrayAssign{Base: opcode.NewBase(line), Name: name, Size: sizeText, Init: init, Type: entry.Type})
		} else {
			if sizeText == "" {
				diag.Fatal(line, "array %q declared with no size and no initializer", name)
			}
			p.emit(&opcode.ArrayNoAssign{Base: opcode.NewBase(line), Name: name, Size: sizeText, Type: entry.Type})
		}
		p.declare(name, id)
		return
	}

	if depth > 0 {
		if p.peek().Kind == token.Assignment {
			p.advance()
			e := p.parseExpr()
			t := symtab.CharPtr
			if e.prec >= 0 {
				t = precToType(e.prec)
			}
			entry.Type = t
			p.emit(&opcode.PtrAssign{Base: opcode.NewBase(line), Name: name, Expr: e.text, Depth: depth, Type: t})
		} else {
			entry.Type = symtab.Declared
			p.emit(&opcode.PtrNoAssign{Base: opcode.NewBase(line), Name: name, Depth: depth, Type: symtab.Declared})
		}
		p.declare(name, id)
		return
	}

	if p.peek().Kind != token.Assignment {
		entry.Type = symtab.Declared
		p.emit(&opcode.VarNoAssign{Base: opcode.NewBase(line), Name: name, Type: symtab.Declared})
		p.declare(name, id)
		return
	}
	p.advance()
	e := p.parseExpr()
	if e.prec == -1 && strings.HasPrefix(e.text, "input:") {
		prompt := strings.TrimPrefix(e.text, "input:")
		// the destination is typed int and read with the int scanf
		// conversion; later uses of the variable do not revise either.
		entry.Type = symtab.Int
		_, code, _ := scanfSpec(entry.Type)
		p.emit(&opcode.VarAssign{Base: opcode.NewBase(line), Name: name, IsInput: true, Prompt: prompt, Scan: code, Type: entry.Type})
		p.declare(name, id)
		return
	}
	t := symtab.NotKnown
	if e.prec >= 0 {
		t = precToType(e.prec)
	}
	entry.Type = t
	p.emit(&opcode.VarAssign{Base: opcode.NewBase(line), Name: name, Expr: e.text, Type: t})
	p.table.Resolve(id)
	p.declare(name, id)
}

func (p *Parser) parseArrayInitializer() string {
	p.expect(token.LeftBrace, "'{' to start array initializer")
	var parts []string
	for p.peek().Kind != token.RightBrace {
		e := p.parseExpr()
		parts = append(parts, e.text)
		if p.peek().Kind == token.Comma {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RightBrace, "'}'")
	return "{" + strings.Join(parts, ", ") + "}"
}

// parsePointerAssignStmt parses `*name = expr` and its compound-assignment
// variants against an already-declared pointer.
func (p *Parser) parsePointerAssignStmt() {
	line := p.line()
	depth := 0
	for p.peek().Kind == token.Multiply {
		depth++
		p.advance()
	}
	nameTok := p.expect(token.ID, "pointer name")
	name := p.valueOf(nameTok.ID)
	opTok := p.advance()
	op := assignOpText(opTok.Kind)
	e := p.parseExpr()
	p.emit(&opcode.PtrOnlyAssign{Base: opcode.NewBase(line), Name: name, Depth: depth, Op: op, Expr: e.text})
}

func assignOpText(k token.Kind) string {
	switch k {
	case token.Assignment:
		return "="
	case token.PlusEqual:
		return "+="
	case token.MinusEqual:
		return "-="
	case token.MultiplyEqual:
		return "*="
	case token.DivideEqual:
		return "/="
	case token.ModulusEqual:
		return "%="
	default:
		return "="
	}
}

// parseIdentStatement dispatches a statement that starts with a bare
// identifier: struct instantiation, array/scalar assignment, a call, or a
// bare increment/decrement. Pointer assignment starts with '*' and is
// handled by parsePointerAssignStmt.
func (p *Parser) parseIdentStatement() {
	t := p.peek()
	name := p.valueOf(t.ID)
	if _, ok := p.structs[name]; ok && p.peekAt(1).Kind == token.ID {
		p.advance()
		p.parseStructInstantiate(name)
		return
	}
	switch p.peekAt(1).Kind {
	case token.LeftBracket:
		p.parseArrayAssignStmt()
	case token.LeftParen:
		p.parseCallStatement()
	case token.Increment, token.Decrement:
		p.parseUnaryStmt()
	case token.Assignment, token.PlusEqual, token.MinusEqual, token.MultiplyEqual, token.DivideEqual, token.ModulusEqual:
		p.parseAssignStmt()
	default:
		diag.Fatal(t.Line, "unexpected token after identifier %q", name)
	}
}

func (p *Parser) parseArrayAssignStmt() {
	line := p.line()
	nameTok := p.advance()
	name := p.valueOf(nameTok.ID)
	p.expect(token.LeftBracket, "'['")
	idx := p.parseExpr()
	p.expect(token.RightBracket, "']'")
	p.expect(token.Assignment, "'=' in array assignment")
	e := p.parseExpr()
	p.emit(&opcode.ArrayOnlyAssign{Base: opcode.NewBase(line), Name: name, Index: idx.text, Expr: e.text})
}

func (p *Parser) parseCallStatement() {
	line := p.line()
	nameTok := p.advance()
	name := p.valueOf(nameTok.ID)
	p.expect(token.LeftParen, "'(' in call")
	args, argTypes := p.parseCallArgs()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.resolveCallReturnType(name, argTypes)
	p.emit(&opcode.FuncCall{Base: opcode.NewBase(line), Name: name, Args: args})
}

func (p *Parser) parseUnaryStmt() {
	line := p.line()
	nameTok := p.advance()
	name := p.valueOf(nameTok.ID)
	opTok := p.advance()
	text := name + "++"
	if opTok.Kind == token.Decrement {
		text = name + "--"
	}
	p.emit(&opcode.Unary{Base: opcode.NewBase(line), Text: text})
}

func (p *Parser) parseAssignStmt() {
	line := p.line()
	nameTok := p.advance()
	name := p.valueOf(nameTok.ID)
	opTok := p.advance()
	op := assignOpText(opTok.Kind)
	e := p.parseExpr()
	if opTok.Kind == token.Assignment && e.prec >= 0 {
		id, ok := p.resolve(name)
		if ok {
			entry := p.table.Get(id)
			if entry.Type == symtab.Var || entry.Type == symtab.Declared || entry.Type == symtab.NotKnown {
				entry.Type = precToType(e.prec)
				p.table.Resolve(id)
			}
		}
	}
	p.emit(&opcode.Assign{Base: opcode.NewBase(line), Name: name, Op: op, Expr: e.text})
}

// parseFuncDecl parses `fun name(params) { body }`. A default argument
// value must be a literal (number, string or bool) and is recorded by its
// symbol table id; any other default is a fatal error.
func (p *Parser) parseFuncDecl() {
	line := p.line()
	p.advance()
	nameTok := p.expect(token.ID, "function name")
	name := p.valueOf(nameTok.ID)
	p.expect(token.LeftParen, "'(' after function name")

	var params []symtab.Param
	var paramIDs []symtab.ID
	for p.peek().Kind != token.RightParen {
		pnameTok := p.expect(token.ID, "parameter name")
		pname := p.valueOf(pnameTok.ID)
		prm := symtab.Param{Name: pname, Type: symtab.Var}
		if p.peek().Kind == token.Assignment {
			p.advance()
			lit := p.peek()
			diag.Check([]token.Kind{token.Number, token.String, token.Bool}, lit.Kind, p.line(),
				"default value for parameter %q must be a literal", pname)
			p.advance()
			prm.HasDefault = true
			prm.Default = lit.ID
		}
		params = append(params, prm)
		paramIDs = append(paramIDs, pnameTok.ID)
		if p.peek().Kind == token.Comma {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}

	id, _ := p.resolve(name)
	entry := p.table.Get(id)
	entry.Type = symtab.Function
	entry.Meta = symtab.Meta{Kind: symtab.FunctionMeta, Params: params}

	fi := &funcInfo{params: params, returnType: symtab.NotKnown, id: id}
	p.funcs[name] = fi
	prevFunc := p.currentFunc
	p.currentFunc = fi

	opParams := make([]opcode.Param, len(params))
	for i, pr := range params {
		opParams[i] = opcode.Param{Name: pr.Name, Type: pr.Type, ID: paramIDs[i]}
	}
	p.emit(&opcode.FuncDecl{Base: opcode.NewBase(line), Name: name, Params: opParams, ReturnType: symtab.NotKnown, ID: id})

	p.pushScope()
	for _, pr := range params {
		pid, _ := p.resolve(pr.Name)
		p.declare(pr.Name, pid)
	}
	if p.peek().Kind == token.LeftBrace {
		p.advance()
		p.skipNewlines()
		for p.peek().Kind != token.RightBrace && !p.atEnd() {
			p.parseStatement()
			p.skipNewlines()
		}
		p.expect(token.RightBrace, "'}' to end function body")
	} else {
		prevState := p.state
		p.state = scopeOneLineFuncStart
		p.parseStatement()
		p.state = scopeOneLineFuncEnd
		p.state = prevState
	}
	p.emit(&opcode.ScopeOver{Base: opcode.NewBase(p.line())})
	p.popScope()
	p.currentFunc = prevFunc
}

func (p *Parser) parseReturn() {
	line := p.line()
	p.advance()
	if p.peek().Kind == token.Newline || p.peek().Kind == token.RightBrace {
		p.emit(&opcode.Return{Base: opcode.NewBase(line), HasExpr: false})
		if p.currentFunc != nil && p.currentFunc.returnType == symtab.NotKnown {
			p.currentFunc.returnType = symtab.Var
		}
		return
	}
	e := p.parseExpr()
	p.emit(&opcode.Return{Base: opcode.NewBase(line), Expr: e.text, HasExpr: true})
	if p.currentFunc == nil {
		return
	}
	if e.prec >= 0 {
		rt := precToType(e.prec)
		p.currentFunc.returnType = rt
		p.table.SetType(p.currentFunc.id, rt)
		p.table.Resolve(p.currentFunc.id)
		return
	}
	// The return expression's type depends on still-untyped parameters;
	// defer resolution to the first call site that supplies concrete
	// argument types (spec §4.3 Design Note 5). Every parameter the
	// expression mentions contributes its call-site argument type to the
	// usual max-precedence widening rule, so a compound expression like
	// `x + y` resolves once any call site supplies concrete types for the
	// parameters it references.
	params := p.currentFunc.params
	exprText := e.text
	p.currentFunc.pending = func(argTypes []symtab.DataType) (symtab.DataType, bool) {
		prec := -1
		matched := false
		for i, prm := range params {
			if i >= len(argTypes) || !mentionsIdent(exprText, prm.Name) {
				continue
			}
			matched = true
			if ap := argTypes[i].Precedence(); ap > prec {
				prec = ap
			}
		}
		if !matched {
			return symtab.NotKnown, false
		}
		return precToType(prec), true
	}
}

// mentionsIdent reports whether name occurs in text as a whole identifier,
// not merely as a substring of a longer identifier.
func mentionsIdent(text, name string) bool {
	for idx := 0; ; {
		i := strings.Index(text[idx:], name)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(name)
		idx = end
		before := start == 0 || !isIdentByte(text[start-1])
		after := end == len(text) || !isIdentByte(text[end])
		if before && after {
			return true
		}
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (p *Parser) parseExit() {
	line := p.line()
	p.advance()
	code := "0"
	if p.peek().Kind != token.Newline {
		e := p.parseExpr()
		code = e.text
	}
	p.emit(&opcode.Exit{Base: opcode.NewBase(line), Code: code})
}

func (p *Parser) parseFor() {
	line := p.line()
	p.advance()
	nameTok := p.expect(token.ID, "loop variable")
	name := p.valueOf(nameTok.ID)
	id, _ := p.resolve(name)
	entry := p.table.Get(id)
	if entry.Type == symtab.Var || entry.Type == symtab.Declared {
		entry.Type = symtab.Int
	}
	p.expect(token.In, "'in'")
	start := p.parseExpr()
	p.expect(token.To, "'to'")
	end := p.parseExpr()
	stepText := "1"
	stepOp := "+"
	if p.peek().Kind == token.By {
		p.advance()
		switch p.peek().Kind {
		case token.Minus:
			p.advance()
			stepOp = "-"
		case token.Plus:
			p.advance()
		}
		step := p.parseExpr()
		stepText = step.text
	}
	p.emit(&opcode.For{Base: opcode.NewBase(line), Var: name, Start: start.text, End: end.text, CompareOp: forCompareOp(start.text, end.text), StepOp: stepOp, Step: stepText})
	p.pushScope()
	p.declare(name, id)
	p.parseBody()
	p.popScope()
}

// forCompareOp picks the canonical C comparison for a for loop's header
// by comparing its numeric bounds directly (spec §4.3): descending
// literal bounds need `>` to ever execute. Non-literal bounds (an
// identifier or expression whose value isn't known at parse time)
// default to the ascending `<` form.
func forCompareOp(start, end string) string {
	s, errS := strconv.ParseFloat(start, 64)
	e, errE := strconv.ParseFloat(end, 64)
	if errS == nil && errE == nil && s > e {
		return ">"
	}
	return "<"
}

func (p *Parser) parseWhile() {
	line := p.line()
	p.advance()
	p.expect(token.LeftParen, "'(' after while")
	cond := p.parseExpr()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.While{Base: opcode.NewBase(line), Cond: cond.text})
	p.parseBody()
}

func (p *Parser) parseDoWhile() {
	line := p.line()
	p.advance()
	p.emit(&opcode.Do{Base: opcode.NewBase(line)})
	p.parseBody()
	p.expect(token.While, "'while' closing a do block")
	p.expect(token.LeftParen, "'(' after while")
	cond := p.parseExpr()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.WhileDo{Base: opcode.NewBase(p.line()), Cond: cond.text})
}

func (p *Parser) parseIf() {
	line := p.line()
	p.advance()
	p.expect(token.LeftParen, "'(' after if")
	cond := p.parseExpr()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.If{Base: opcode.NewBase(line), Cond: cond.text})
	p.parseBody()
}

func (p *Parser) parseElseIf() {
	line := p.line()
	p.advance()
	p.expect(token.LeftParen, "'(' after else_if")
	cond := p.parseExpr()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.ElseIf{Base: opcode.NewBase(line), Cond: cond.text})
	p.parseBody()
}

func (p *Parser) parseElse() {
	line := p.line()
	p.advance()
	p.emit(&opcode.Else{Base: opcode.NewBase(line)})
	p.parseBody()
}

func (p *Parser) parseSwitch() {
	line := p.line()
	p.advance()
	p.expect(token.LeftParen, "'(' after switch")
	e := p.parseExpr()
	p.expect(token.RightParen, "')'")
	if p.peek().Kind == token.CallEnd {
		p.advance()
	}
	p.emit(&opcode.Switch{Base: opcode.NewBase(line), Expr: e.text})
	p.expect(token.LeftBrace, "'{' to start switch body")
	p.pushScope()
	p.emit(&opcode.ScopeBegin{Base: opcode.NewBase(p.line())})
	p.skipNewlines()
	for p.peek().Kind != token.RightBrace && !p.atEnd() {
		p.parseStatement()
		p.skipNewlines()
	}
	p.expect(token.RightBrace, "'}'")
	p.emit(&opcode.ScopeOver{Base: opcode.NewBase(p.line())})
	p.popScope()
}

func (p *Parser) parseCase() {
	line := p.line()
	p.advance()
	e := p.parseExpr()
	p.expect(token.Colon, "':' after case value")
	p.emit(&opcode.Case{Base: opcode.NewBase(line), Expr: e.text})
}

func (p *Parser) parseDefault() {
	line := p.line()
	p.advance()
	p.expect(token.Colon, "':' after default")
	p.emit(&opcode.Default{Base: opcode.NewBase(line)})
}

// parseStructDecl parses `struct Name { var member ... }`; each member is a
// `var name` with no initializer and is recorded with type var.
func (p *Parser) parseStructDecl() {
	line := p.line()
	p.advance()
	nameTok := p.expect(token.ID, "struct name")
	name := p.valueOf(nameTok.ID)
	p.expect(token.LeftBrace, "'{' to start struct body")
	si := &structInfo{}
	p.emit(&opcode.StructDecl{Base: opcode.NewBase(line), Name: name})
	p.skipNewlines()
	for p.peek().Kind != token.RightBrace {
		p.expect(token.Var, "'var' for struct member")
		memTok := p.expect(token.ID, "member name")
		memName := p.valueOf(memTok.ID)
		mid, _ := p.resolve(memName)
		p.table.Get(mid).Type = symtab.Var
		si.members = append(si.members, structMember{name: memName, typ: symtab.Var})
		p.emit(&opcode.VarNoAssign{Base: opcode.NewBase(p.line()), Name: memName, Type: symtab.Var})
		p.skipNewlines()
	}
	p.expect(token.RightBrace, "'}'")
	p.emit(&opcode.StructScopeOver{Base: opcode.NewBase(p.line())})
	p.structs[name] = si
}

// parseStructInstantiate parses `StructName var`, declaring both the
// instance itself and a derived `var.member` entry per struct member, so a
// later reference to `var.member` resolves to that member's own type
// rather than interning a fresh, disconnected Var (spec §4.3 struct
// instantiation).
func (p *Parser) parseStructInstantiate(structName string) {
	line := p.line()
	varTok := p.expect(token.ID, "instance name")
	varName := p.valueOf(varTok.ID)
	id, _ := p.resolve(varName)
	entry := p.table.Get(id)
	entry.Type = symtab.StructVar
	p.declare(varName, id)

	if si, ok := p.structs[structName]; ok {
		for _, mem := range si.members {
			memberName := varName + "." + mem.name
			mid := p.table.Define(memberName, mem.typ, symtab.Meta{Kind: symtab.Variable})
			p.declare(memberName, mid)
		}
	}

	p.emit(&opcode.StructInstantiate{Base: opcode.NewBase(line), StructName: structName, VarName: varName})
}
