package parser

import (
	"fmt"
	"strconv"

	"dlc/internal/diag"
	"dlc/internal/igr"
	"dlc/internal/source"
	"dlc/internal/token"
)

// value — результат разбора выражения: источник данных (выход узла, вход
// подграфа или литерал) и его span.
type value struct {
	src  igr.Bindable
	span source.Span
}

// poison подставляется вместо выражения с семантической ошибкой,
// чтобы разбор продолжался.
func poison(sp source.Span) value {
	return value{src: igr.NewLiteral(igr.Value{}), span: sp}
}

func (p *Parser) typeOf(v value) igr.Type {
	switch src := v.src.(type) {
	case *igr.Literal:
		return src.Type
	case igr.OutRef:
		return p.g.Out(src).Type
	}
	return igr.TypeUnknown
}

func (p *Parser) owner() igr.ID { return p.res.Current().ID }

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precEquality       = 3 // = !=
	precComparison     = 4 // < <= > >=
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * /
)

type operandKind uint8

const (
	operandAny operandKind = iota
	operandNumber
	operandBool
)

type binaryOp struct {
	code    string
	operand operandKind
	result  igr.Type // TypeUnknown — тип операндов (int или float)
}

var binaryOps = map[token.Kind]struct {
	prec int
	op   binaryOp
}{
	token.OrOr:   {precLogicalOr, binaryOp{"or", operandBool, igr.TypeBool}},
	token.AndAnd: {precLogicalAnd, binaryOp{"and", operandBool, igr.TypeBool}},
	token.Eq:     {precEquality, binaryOp{"equals", operandAny, igr.TypeBool}},
	token.BangEq: {precEquality, binaryOp{"notEq", operandAny, igr.TypeBool}},
	token.Lt:     {precComparison, binaryOp{"less", operandNumber, igr.TypeBool}},
	token.LtEq:   {precComparison, binaryOp{"lessEq", operandNumber, igr.TypeBool}},
	token.Gt:     {precComparison, binaryOp{"more", operandNumber, igr.TypeBool}},
	token.GtEq:   {precComparison, binaryOp{"moreEq", operandNumber, igr.TypeBool}},
	token.Plus:   {precAdditive, binaryOp{"add", operandNumber, igr.TypeUnknown}},
	token.Minus:  {precAdditive, binaryOp{"sub", operandNumber, igr.TypeUnknown}},
	token.Star:   {precMultiplicative, binaryOp{"mul", operandNumber, igr.TypeUnknown}},
	token.Slash:  {precMultiplicative, binaryOp{"div", operandNumber, igr.TypeUnknown}},
}

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (value, bool) {
	return p.parseBinaryExpr(precLogicalOr)
}

// parseBinaryExpr — precedence climbing, все операторы левоассоциативны.
func (p *Parser) parseBinaryExpr(minPrec int) (value, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return value{}, false
	}
	for {
		entry, isOp := binaryOps[p.lx.Peek().Kind]
		if !isOp || entry.prec < minPrec {
			return left, true
		}
		opTok := p.advance()
		right, ok := p.parseBinaryExpr(entry.prec + 1)
		if !ok {
			return value{}, false
		}
		left = p.binary(entry.op, opTok, left, right)
	}
}

func (p *Parser) binary(op binaryOp, opTok token.Token, left, right value) value {
	p.checkOperand(op.operand, opTok, left)
	p.checkOperand(op.operand, opTok, right)

	n := p.g.AddOperation(p.owner(), op.code, 2)
	p.g.Connect(left.src, n.InRef(0))
	p.g.Connect(right.src, n.InRef(1))

	n.Out.Type = op.result
	if op.result == igr.TypeUnknown {
		n.Out.Type = igr.TypeInt
		if p.typeOf(left) == igr.TypeFloat || p.typeOf(right) == igr.TypeFloat {
			n.Out.Type = igr.TypeFloat
		}
	}
	return value{src: n.OutRef(), span: left.span.Cover(right.span)}
}

// checkOperand: неизвестный тип проверку отключает.
func (p *Parser) checkOperand(kind operandKind, opTok token.Token, v value) {
	t := p.typeOf(v)
	if t == igr.TypeUnknown {
		return
	}
	switch {
	case kind == operandNumber && t != igr.TypeInt && t != igr.TypeFloat:
		p.report(diag.SemaWrongType, diag.SevError, v.span,
			fmt.Sprintf("operator '%s' expects a number, got %s", opTok.Text, t))
	case kind == operandBool && t != igr.TypeBool:
		p.report(diag.SemaWrongType, diag.SevError, v.span,
			fmt.Sprintf("operator '%s' expects a bool, got %s", opTok.Text, t))
	}
}

// parseUnaryExpr обрабатывает префиксы '!' и '-'.
func (p *Parser) parseUnaryExpr() (value, bool) {
	var code string
	var kind operandKind
	switch p.lx.Peek().Kind {
	case token.Bang:
		code, kind = "not", operandBool
	case token.Minus:
		code, kind = "neg", operandNumber
	default:
		return p.parsePostfixExpr()
	}

	opTok := p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return value{}, false
	}
	p.checkOperand(kind, opTok, operand)

	n := p.g.AddOperation(p.owner(), code, 1)
	p.g.Connect(operand.src, n.InRef(0))
	n.Out.Type = igr.TypeBool
	if kind == operandNumber {
		n.Out.Type = p.typeOf(operand)
		if n.Out.Type == igr.TypeUnknown {
			n.Out.Type = igr.TypeInt
		}
	}
	return value{src: n.OutRef(), span: opTok.Span.Cover(operand.span)}, true
}

// parsePostfixExpr — индексирование a[i], цепочкой.
func (p *Parser) parsePostfixExpr() (value, bool) {
	v, ok := p.parsePrimaryExpr()
	if !ok {
		return value{}, false
	}
	for p.at(token.LBracket) {
		p.advance()
		idx, ok := p.parseExpr()
		if !ok {
			return value{}, false
		}
		closeTok, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' after index")
		if !ok {
			return value{}, false
		}
		n := p.g.AddOperation(p.owner(), "arrGet", 2)
		p.g.Connect(v.src, n.InRef(0))
		p.g.Connect(idx.src, n.InRef(1))
		v = value{src: n.OutRef(), span: v.span.Cover(closeTok.Span)}
	}
	return v, true
}

func (p *Parser) parsePrimaryExpr() (value, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse:
		p.advance()
		return p.literal(tok), true
	case token.Ident:
		p.advance()
		if p.at(token.LParen) {
			return p.parseCall(tok)
		}
		return p.name(tok), true
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return value{}, false
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')'")
		if !ok {
			return value{}, false
		}
		return value{src: inner.src, span: tok.Span.Cover(closeTok.Span)}, true
	case token.LBracket:
		return p.parseArray()
	case token.KwLet:
		return p.parseLet()
	case token.KwIf:
		return p.parseIf()
	case token.KwFor:
		return p.parseFor()
	case token.Invalid:
		// лексер уже отрепортил
		p.advance()
		p.opts.CurrentErrors++
		return poison(tok.Span), true
	default:
		p.unexpected(diag.SynUnexpectedToken, "expected expression")
		return value{}, false
	}
}

func (p *Parser) literal(tok token.Token) value {
	var v igr.Value
	switch tok.Kind {
	case token.IntLit:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, "integer literal out of range")
			return poison(tok.Span)
		}
		v = igr.IntValue(n)
	case token.FloatLit:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, "float literal out of range")
			return poison(tok.Span)
		}
		v = igr.FloatValue(f)
	case token.StringLit:
		s, err := strconv.Unquote(tok.Text)
		if err != nil {
			p.report(diag.LexUnterminatedString, diag.SevError, tok.Span, "invalid escape in string literal")
			return poison(tok.Span)
		}
		v = igr.StringValue(s)
	default:
		v = igr.BoolValue(tok.Kind == token.KwTrue)
	}
	return value{src: igr.NewLiteral(v), span: tok.Span}
}

func (p *Parser) name(tok token.Token) value {
	src, ok := p.res.Lookup(tok.Text)
	if !ok {
		p.report(diag.SemaUnknownName, diag.SevError, tok.Span, "unknown name '"+tok.Text+"'")
		return poison(tok.Span)
	}
	return value{src: src, span: tok.Span}
}

// parseArray разбирает [], [a, b, c] и диапазон [a..b].
func (p *Parser) parseArray() (value, bool) {
	open := p.advance()
	if p.at(token.RBracket) {
		closeTok := p.advance()
		return value{src: igr.NewLiteral(igr.ArrayValue()), span: open.Span.Cover(closeTok.Span)}, true
	}

	first, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	elems := []value{first}
	code := "array"
	if p.at(token.DotDot) {
		dots := p.advance()
		last, ok := p.parseExpr()
		if !ok {
			return value{}, false
		}
		p.checkOperand(operandNumber, dots, first)
		p.checkOperand(operandNumber, dots, last)
		elems = append(elems, last)
		code = "range"
	} else {
		for p.at(token.Comma) {
			p.advance()
			el, ok := p.parseExpr()
			if !ok {
				return value{}, false
			}
			elems = append(elems, el)
		}
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']'")
	if !ok {
		return value{}, false
	}

	n := p.g.AddOperation(p.owner(), code, len(elems))
	for i, el := range elems {
		p.g.Connect(el.src, n.InRef(i))
	}
	n.Out.Type = igr.TypeArray
	return value{src: n.OutRef(), span: open.Span.Cover(closeTok.Span)}, true
}
