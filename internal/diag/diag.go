// Package diag carries structured diagnostics out of the transformation
// pipeline: parse/redefinition/fallback/internal reports a driver can log
// and use to decide whether to keep going.
package diag

import (
	"go/token"

	"go.uber.org/zap"

	"github.com/dlogc/dlc/ast"
)

// Severity tags a Report as blocking or advisory.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Code enumerates the diagnostic taxonomy: parse-stage failures belong to
// the frontend collaborator and never originate here, but the core still
// names the code so a Report can carry one through unchanged.
type Code int

const (
	CodeParseError Code = iota
	CodeRedefinition
	CodeDeprecation
	CodeNormaliserFallback
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeParseError:
		return "parse-error"
	case CodeRedefinition:
		return "redefinition"
	case CodeDeprecation:
		return "deprecation"
	case CodeNormaliserFallback:
		return "normaliser-fallback"
	case CodeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Report is one diagnostic: a severity, a code, a human-readable detail,
// and the relation/position it concerns, when known.
type Report struct {
	Severity Severity
	Code     Code
	Detail   string
	Relation ast.QualifiedName
	Pos      token.Pos
}

// Emit logs the report at the level matching its Severity, with Code,
// Relation, and Pos as structured fields.
func (r Report) Emit(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("code", r.Code.String()),
	}
	if len(r.Relation) > 0 {
		fields = append(fields, zap.String("relation", r.Relation.String()))
	}
	if r.Pos.IsValid() {
		fields = append(fields, zap.Int("pos", int(r.Pos)))
	}

	switch r.Severity {
	case SeverityError:
		logger.Error(r.Detail, fields...)
	default:
		logger.Warn(r.Detail, fields...)
	}
}

// Collector accumulates reports across a transformation run.
type Collector struct {
	reports []Report
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records report.
func (c *Collector) Add(r Report) {
	c.reports = append(c.reports, r)
}

// Reports returns every collected report, in the order added.
func (c *Collector) Reports() []Report {
	return c.reports
}

// HasErrors reports whether any collected report carries SeverityError —
// the driver consults this to decide whether to stop the run.
func (c *Collector) HasErrors() bool {
	for _, r := range c.reports {
		if r.Severity == SeverityError {
			return true
		}
	}
	return false
}

// EmitAll logs every collected report through logger, in collection order.
func (c *Collector) EmitAll(logger *zap.Logger) {
	for _, r := range c.reports {
		r.Emit(logger)
	}
}
