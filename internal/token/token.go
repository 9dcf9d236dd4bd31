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

// Package token defines the lexical unit produced by internal/lexer and
// consumed by internal/parser.
package token

import (
	"fmt"

	"github.com/gmofishsauce/simc/internal/symtab"
)

// N.B. Kind is a struct wrapping an int rather than a plain int-derived
// type. A bare `type Kind int` still lets a caller pass an arbitrary int
// literal wherever a Kind is expected; wrapping it in a one-field struct
// closes that hole at the cost of a little ceremony below.
type Kind struct {
	k int
}

func (k Kind) String() string {
	if k.k < 0 || k.k >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k.k]
}

var (
	Number     = Kind{0}
	String     = Kind{1}
	ID         = Kind{2}
	Bool       = Kind{3}
	TypeCast   = Kind{4}
	Newline    = Kind{5}
	CallEnd    = Kind{6}
	RawC       = Kind{7}
	LineComment  = Kind{8}
	BlockComment = Kind{9}
	EOF          = Kind{10}

	// punctuation
	LeftParen  = Kind{11}
	RightParen = Kind{12}
	LeftBrace  = Kind{13}
	RightBrace = Kind{14}
	LeftBracket  = Kind{15}
	RightBracket = Kind{16}
	Comma        = Kind{17}
	Colon        = Kind{18}

	// operators, longest-match-wins order is enforced by the lexer, not here
	Equal              = Kind{19}
	Assignment         = Kind{20}
	NotEqual           = Kind{21}
	GreaterThanEqual   = Kind{22}
	LessThanEqual      = Kind{23}
	GreaterThan        = Kind{24}
	LessThan           = Kind{25}
	Plus               = Kind{26}
	Minus              = Kind{27}
	PlusEqual          = Kind{28}
	Increment          = Kind{29}
	MinusEqual         = Kind{30}
	Decrement          = Kind{31}
	Multiply           = Kind{32}
	MultiplyEqual      = Kind{33}
	Power              = Kind{34}
	Divide             = Kind{35}
	DivideEqual        = Kind{36}
	Modulus            = Kind{37}
	ModulusEqual       = Kind{38}
	LeftShift          = Kind{39}
	RightShift         = Kind{40}
	And                = Kind{41}
	Or                 = Kind{42}
	BitwiseAnd         = Kind{43}
	AddressOf          = Kind{44}
	BitwiseOr          = Kind{45}
	BitwiseXor         = Kind{46}

	// keywords
	Print     = Kind{47}
	Var       = Kind{48}
	Input     = Kind{49}
	Import    = Kind{50}
	Main      = Kind{51}
	EndMain   = Kind{52}
	Fun       = Kind{53}
	For       = Kind{54}
	In        = Kind{55}
	To        = Kind{56}
	By        = Kind{57}
	If        = Kind{58}
	ElseIf    = Kind{59}
	Else      = Kind{60}
	Switch    = Kind{61}
	Case      = Kind{62}
	Default   = Kind{63}
	While     = Kind{64}
	Do        = Kind{65}
	Break     = Kind{66}
	Continue  = Kind{67}
	Return    = Kind{68}
	Exit      = Kind{69}
	Struct    = Kind{70}
	BeginC    = Kind{71}
	EndC      = Kind{72}
	Typeof    = Kind{73}
	SizeOf    = Kind{74}
)

var kindNames = []string{
	"number", "string", "id", "bool", "type_cast", "newline", "call_end", "RAW_C",
	"single_line_comment", "multi_line_comment", "EOF",
	"left_paren", "right_paren", "left_brace", "right_brace", "left_bracket", "right_bracket",
	"comma", "colon",
	"equal", "assignment", "not_equal", "greater_than_equal", "less_than_equal",
	"greater_than", "less_than", "plus", "minus", "plus_equal", "increment",
	"minus_equal", "decrement", "multiply", "multiply_equal", "power", "divide",
	"divide_equal", "modulus", "modulus_equal", "left_shift", "right_shift",
	"and", "or", "bitwise_and", "address_of", "bitwise_or", "bitwise_xor",
	"print", "var", "input", "import", "MAIN", "END_MAIN", "fun", "for", "in",
	"to", "by", "if", "else_if", "else", "switch", "case", "default", "while",
	"do", "break", "continue", "return", "exit", "struct", "BEGIN_C", "END_C",
	"typeof", "size",
}

// Keywords maps surface spelling to Kind for the subset of identifiers that
// the lexer must recognize as reserved words rather than user identifiers.
var Keywords = map[string]Kind{
	"print": Print, "var": Var, "input": Input, "import": Import,
	"MAIN": Main, "END_MAIN": EndMain, "fun": Fun, "for": For, "in": In,
	"to": To, "by": By, "if": If, "else_if": ElseIf, "else": Else,
	"switch": Switch, "case": Case, "default": Default, "while": While,
	"do": Do, "break": Break, "continue": Continue, "return": Return,
	"exit": Exit, "struct": Struct, "BEGIN_C": BeginC, "END_C": EndC,
	"typeof": Typeof, "size": SizeOf,
}

// Token is one lexical unit: a Kind, an optional payload, and the 1-based
// source line it was found on. Exactly one of ID/Raw is meaningful per
// Kind: Number/String/ID/Bool carry a symbol-table id in ID; RawC carries
// a verbatim source line in Raw, LineComment/BlockComment the comment
// text, and TypeCast the C type name; everything else carries neither.
type Token struct {
	Kind Kind
	ID   symtab.ID
	Raw  string
	Line int
}

func New(kind Kind, line int) Token {
	return Token{Kind: kind, Line: line}
}

func NewSymbol(kind Kind, id symtab.ID, line int) Token {
	return Token{Kind: kind, ID: id, Line: line}
}

func NewRaw(raw string, line int) Token {
	return Token{Kind: RawC, Raw: raw, Line: line}
}

func (t Token) String() string {
	switch t.Kind {
	case Number, String, ID, Bool:
		return fmt.Sprintf("{%s #%d}", t.Kind, t.ID)
	case RawC, LineComment, BlockComment, TypeCast:
		return fmt.Sprintf("{%s %q}", t.Kind, t.Raw)
	default:
		return fmt.Sprintf("{%s}", t.Kind)
	}
}

func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.ID == o.ID && t.Raw == o.Raw && t.Line == o.Line
}
