package parser

import (
	"fmt"

	"dlc/internal/diag"
	"dlc/internal/igr"
	"dlc/internal/token"
)

// parseLet разбирает `let a := e1 b := e2 in body`. Запятые между
// связываниями необязательны. Имя видно начиная со следующего связывания.
func (p *Parser) parseLet() (value, bool) {
	letTok := p.advance()
	p.res.PushScope()
	for {
		name, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected name in let binding")
		if !ok {
			return value{}, false
		}
		if _, ok := p.expect(token.ColonAssign, diag.SynUnexpectedToken, "expected ':=' after '"+name.Text+"'"); !ok {
			return value{}, false
		}
		v, ok := p.parseExpr()
		if !ok {
			return value{}, false
		}
		if !p.res.Declare(name.Text, v.src) {
			p.report(diag.SemaDuplicateName, diag.SevError, name.Span, "'"+name.Text+"' is already bound in this let")
		}
		if p.at(token.Comma) {
			p.advance()
		}
		if p.at(token.KwIn) {
			break
		}
	}
	p.advance() // in

	body, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	p.res.PopScope()
	return value{src: body.src, span: letTok.Span.Cover(body.span)}, true
}

// parseIf разбирает `if c then a else b`. Условие проходит через операцию
// int: узел If переключается целым значением.
func (p *Parser) parseIf() (value, bool) {
	ifTok := p.advance()
	cond, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	if _, ok := p.expect(token.KwThen, diag.SynUnexpectedToken, "expected 'then' after condition"); !ok {
		return value{}, false
	}
	if t := p.typeOf(cond); t != igr.TypeUnknown && t != igr.TypeBool {
		p.report(diag.SemaWrongType, diag.SevError, cond.span, fmt.Sprintf("condition must be a bool, got %s", t))
	}

	owner := p.owner()
	toInt := p.g.AddOperation(owner, "int", 1)
	p.g.Connect(cond.src, toInt.InRef(0))
	toInt.Out.Type = igr.TypeInt

	iff := p.g.AddIf(owner)
	p.g.Bind(toInt.OutRef(), iff.InRef(0))

	thenV, ok := p.parseBranch(p.g.SubGraph(iff.If.Then))
	if !ok {
		return value{}, false
	}
	if _, ok := p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else'"); !ok {
		return value{}, false
	}
	elseV, ok := p.parseBranch(p.g.SubGraph(iff.If.Else))
	if !ok {
		return value{}, false
	}

	span := ifTok.Span.Cover(elseV.span)
	tt, et := p.typeOf(thenV), p.typeOf(elseV)
	switch {
	case tt != igr.TypeUnknown && et != igr.TypeUnknown && tt != et:
		p.reportWithNote(diag.SemaTypeMismatch, span,
			fmt.Sprintf("branches have different types: then is %s, else is %s", tt, et),
			elseV.span, "else branch")
	case tt != igr.TypeUnknown:
		iff.Out.Type = tt
	default:
		iff.Out.Type = et
	}
	return value{src: iff.OutRef(), span: span}, true
}

// parseBranch разбирает тело ветки внутри её подграфа.
func (p *Parser) parseBranch(sg *igr.SubGraph) (value, bool) {
	p.res.Enter(sg)
	v, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	p.g.Connect(v.src, sg.ExitRef())
	p.res.Leave()
	return v, true
}

// parseFor разбирает `for x in gen do body`; x — вход 0 тела цикла.
func (p *Parser) parseFor() (value, bool) {
	forTok := p.advance()
	name, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected loop variable")
	if !ok {
		return value{}, false
	}
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' after loop variable"); !ok {
		return value{}, false
	}
	gen, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	if _, ok := p.expect(token.KwDo, diag.SynUnexpectedToken, "expected 'do'"); !ok {
		return value{}, false
	}
	if t := p.typeOf(gen); t != igr.TypeUnknown && t != igr.TypeArray {
		p.report(diag.SemaWrongType, diag.SevError, gen.span, fmt.Sprintf("for expects an array, got %s", t))
	}

	loop := p.g.AddFor(p.owner())
	p.g.Connect(gen.src, loop.InRef(0))
	loop.Out.Type = igr.TypeArray

	body := p.g.SubGraph(loop.For.Body)
	p.res.Enter(body)
	p.res.Declare(name.Text, body.EntryRef(0))
	v, ok := p.parseExpr()
	if !ok {
		return value{}, false
	}
	p.g.Connect(v.src, body.ExitRef())
	p.res.Leave()
	return value{src: loop.OutRef(), span: forTok.Span.Cover(v.span)}, true
}

// parseCall разбирает `name(args)`: встроенные функции становятся
// операциями, остальные — вызовами с отложенной проверкой.
func (p *Parser) parseCall(nameTok token.Token) (value, bool) {
	p.advance() // (
	var args []value
	for !p.at(token.RParen) {
		a, ok := p.parseExpr()
		if !ok {
			return value{}, false
		}
		args = append(args, a)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after arguments")
	if !ok {
		return value{}, false
	}
	span := nameTok.Span.Cover(closeTok.Span)

	var n *igr.Node
	if nat, isNative := natives[nameTok.Text]; isNative {
		n = p.g.AddOperation(p.owner(), nat.Code, len(args))
		n.Out.Type = nat.Out
		if len(args) != len(nat.In) {
			p.report(diag.SemaWrongArgCount, diag.SevError, span, argCountMsg(nameTok.Text, len(nat.In), len(args)))
		} else {
			for i, a := range args {
				if t := p.typeOf(a); t != igr.TypeUnknown && nat.In[i] != igr.TypeUnknown && t != nat.In[i] {
					p.report(diag.SemaWrongType, diag.SevError, a.span,
						fmt.Sprintf("argument %d of '%s' must be %s, got %s", i+1, nameTok.Text, nat.In[i], t))
				}
			}
		}
	} else {
		n = p.g.AddCall(p.owner(), nameTok.Text, len(args))
		p.calls = append(p.calls, pendingCall{node: n.ID, name: nameTok.Text, span: span})
	}
	for i, a := range args {
		p.g.Connect(a.src, n.InRef(i))
	}
	return value{src: n.OutRef(), span: span}, true
}
