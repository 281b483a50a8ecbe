// Package diag defines the diagnostic model shared by the front-end phases.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (LEX/SYN/SEM/IO ranges), a short Message, the Primary span and
// optional Notes. Producers emit through a Reporter; BagReporter collects
// into a Bag, the error pool of one compilation. The pool is inspected once
// parsing finishes and its entries are rendered by internal/diagfmt.
//
// Package diag does no formatting or IO.
package diag
