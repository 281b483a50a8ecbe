package parser

import (
	"fmt"

	"dlc/internal/diag"
	"dlc/internal/source"
	"dlc/internal/token"
)

// advance — съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan — лучший span для диагностики: на EOF — позиция
// сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.unexpected(code, msg)
	return token.Token{Kind: token.Invalid, Span: p.getDiagnosticSpan()}, false
}

// unexpected репортит текущий токен; на EOF — SynUnexpectedEOF.
// Invalid-токены уже отрепортил лексер.
func (p *Parser) unexpected(code diag.Code, msg string) {
	switch peek := p.lx.Peek(); peek.Kind {
	case token.EOF:
		p.err(diag.SynUnexpectedEOF, msg+", found end of file")
	case token.Invalid:
		p.opts.CurrentErrors++
	default:
		p.err(code, fmt.Sprintf("%s, found %s", msg, peek.Kind))
	}
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	return p.emit(diag.NewReportBuilder(p.opts.Reporter, sev, code, sp, msg))
}

func (p *Parser) reportWithNote(code diag.Code, sp source.Span, msg string, noteSpan source.Span, note string) bool {
	b := diag.ReportError(p.opts.Reporter, code, sp, msg)
	if !noteSpan.Empty() {
		b = b.WithNote(noteSpan, note)
	}
	return p.emit(b)
}

func (p *Parser) emit(b *diag.ReportBuilder) bool {
	if b.Diagnostic().Severity == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil || p.opts.MaxErrors != 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false
	}
	b.Emit()
	return true
}

func argCountMsg(name string, want, got int) string {
	plural := "s"
	if want == 1 {
		plural = ""
	}
	return fmt.Sprintf("'%s' expects %d argument%s, got %d", name, want, plural, got)
}
