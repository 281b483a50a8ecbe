package lexer

import (
	"dlc/internal/diag"
	"dlc/internal/source"
)

type Options struct {
	Reporter diag.Reporter // может быть nil — тогда ошибки игнорируем (но продолжаем лексить)
	// KeepTrivia сохраняет пробелы и комментарии в Token.Leading.
	KeepTrivia bool
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
	}
}
