// Package parser builds the IGR of a DFL source file directly while
// parsing it: names resolve through scope.Resolver, calls to user functions
// are verified once the whole file is read.
package parser

import (
	"slices"

	"dlc/internal/diag"
	"dlc/internal/igr"
	"dlc/internal/lexer"
	"dlc/internal/scope"
	"dlc/internal/source"
	"dlc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	// Entry, если задан, обязан быть определён в файле.
	Entry string
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Graph *igr.Graph
	// Errors — число ошибок; граф с ошибками компилировать нельзя.
	Errors uint
}

// pendingCall — вызов пользовательской функции, проверяемый после разбора
// всего файла (вызовы вперёд разрешены).
type pendingCall struct {
	node igr.ID
	name string
	span source.Span
}

// Parser — состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	fs       *source.FileSet
	g        *igr.Graph
	res      *scope.Resolver
	opts     Options
	lastSpan source.Span
	calls    []pendingCall
	declared map[string]source.Span
}

// ParseFile разбирает один файл и строит IGR прямо во время разбора.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, opts Options) Result {
	g := igr.New()
	p := Parser{
		lx:       lx,
		fs:       fs,
		g:        g,
		res:      scope.New(g),
		opts:     opts,
		declared: make(map[string]source.Span),
	}

	p.parseItems()
	p.verifyCalls()
	if p.opts.Entry != "" && !g.HasFunction(p.opts.Entry) {
		p.report(diag.SemaMissingEntry, diag.SevError, source.Span{File: lx.File().ID},
			"entry function '"+p.opts.Entry+"' is not defined")
	}
	return Result{Graph: g, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems — основной цикл верхнего уровня: пока не EOF — parseFunc.
func (p *Parser) parseItems() {
	for !p.at(token.EOF) {
		if p.opts.Enough() {
			return
		}
		if !p.at(token.KwFunc) {
			p.err(diag.SynUnexpectedToken, "expected 'func', found "+p.lx.Peek().Kind.String())
			p.resyncTop()
			continue
		}
		if !p.parseFunc() {
			p.resyncTop()
		}
	}
}

// resyncTop прокручивает токены до следующего 'func' или EOF.
func (p *Parser) resyncTop() {
	p.advance()
	for !p.atOr(token.KwFunc, token.EOF) {
		p.advance()
	}
}

// parseFunc разбирает `func name(a, b): expr`.
func (p *Parser) parseFunc() bool {
	p.advance() // func
	nameTok, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected function name")
	if !ok {
		return false
	}

	sg := p.g.NewSubGraph(nameTok.Text)
	p.res.EnterFunction(sg)

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return false
	}
	for !p.at(token.RParen) {
		par, ok := p.expect(token.Ident, diag.SynUnexpectedToken, "expected parameter name")
		if !ok {
			return false
		}
		if !p.res.Declare(par.Text, sg.AddParam(igr.TypeUnknown)) {
			p.report(diag.SemaDuplicateName, diag.SevError, par.Span, "duplicate parameter '"+par.Text+"'")
		}
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' after parameters"); !ok {
		return false
	}

	if IsNative(sg.Name) {
		p.report(diag.SemaDuplicateFunction, diag.SevError, nameTok.Span, "'"+sg.Name+"' is a built-in function")
	} else if prev, dup := p.declared[sg.Name]; dup {
		p.reportWithNote(diag.SemaDuplicateFunction, nameTok.Span, "function '"+sg.Name+"' is already defined",
			prev, "previous definition")
	} else {
		p.declared[sg.Name] = nameTok.Span
		if err := p.g.AddFunction(sg); err != nil {
			p.report(diag.SemaDuplicateFunction, diag.SevError, nameTok.Span, err.Error())
		}
	}

	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' before function body"); !ok {
		return false
	}
	body, ok := p.parseExpr()
	if !ok {
		return false
	}
	p.g.Connect(body.src, sg.ExitRef())
	return true
}

// verifyCalls проверяет отложенные вызовы: существование функции и число
// аргументов; тип результата вызова берётся из выхода вызываемой функции.
func (p *Parser) verifyCalls() {
	for _, c := range p.calls {
		n := p.g.Node(c.node)
		fn, err := p.g.Function(c.name)
		switch {
		case err != nil:
			p.report(diag.SemaUnknownFunction, diag.SevError, c.span, "call to unknown function '"+c.name+"'")
		case fn.Arity() != n.Arity():
			p.reportWithNote(diag.SemaWrongArgCount, c.span,
				argCountMsg(c.name, fn.Arity(), n.Arity()),
				p.declared[c.name], "'"+c.name+"' defined here")
		default:
			n.Out.Type = fn.Exit.Type
		}
	}
	p.calls = nil
}
