package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dlogc/dlc/ast"
	"github.com/dlogc/dlc/formatter"
	"github.com/dlogc/dlc/internal/config"
	"github.com/dlogc/dlc/internal/diag"
	"github.com/dlogc/dlc/internal/normalize"
)

// decodeErrorReport converts an error returned while decoding a Program
// into a diag.Report: a *ast.RedefinitionError becomes a CodeRedefinition
// report naming the offending relation, anything else becomes a generic
// CodeParseError report, since the JSON wire format stands in for the
// parser collaborator here (real Datalog parsing is out of scope).
func decodeErrorReport(err error) diag.Report {
	var redef *ast.RedefinitionError
	if errors.As(err, &redef) {
		return diag.Report{
			Severity: diag.SeverityError,
			Code:     diag.CodeRedefinition,
			Detail:   redef.Detail,
			Relation: redef.Relation,
		}
	}
	return diag.Report{
		Severity: diag.SeverityError,
		Code:     diag.CodeParseError,
		Detail:   err.Error(),
	}
}

// normaliserFallbackReports returns a CodeNormaliserFallback warning for
// every clause whose normal form is not fully normalised (it contains an
// UnhandledArgument or UnhandledLiteral), per the §7 taxonomy.
func normaliserFallbackReports(prog *ast.Program) []diag.Report {
	normalizer := normalize.NewNormalizer()

	var reports []diag.Report
	for _, c := range prog.Clauses() {
		nc := normalizer.Normalize(c)
		if nc.FullyNormalised {
			continue
		}
		reports = append(reports, diag.Report{
			Severity: diag.SeverityWarning,
			Code:     diag.CodeNormaliserFallback,
			Detail:   "clause contains an unhandled argument or literal kind; equivalence and minimisation treat it as opaque",
			Relation: c.Head.Name,
			Pos:      c.Pos,
		})
	}
	return reports
}

// deprecatedQualifierReports returns a CodeDeprecation warning for every
// relation still carrying legacy input/output/printsize qualifier tags
// directly (rather than as a separate directive), unless cfg.Legacy
// silences them.
func deprecatedQualifierReports(prog *ast.Program, cfg config.Config) []diag.Report {
	if cfg.Legacy {
		return nil
	}

	var reports []diag.Report
	for _, r := range prog.Relations() {
		if !r.HasQualifier(ast.QualInput) && !r.HasQualifier(ast.QualOutput) && !r.HasQualifier(ast.QualPrintsize) {
			continue
		}
		reports = append(reports, diag.Report{
			Severity: diag.SeverityWarning,
			Code:     diag.CodeDeprecation,
			Detail:   "legacy qualifier syntax on relation declaration; use an input/output/printsize directive instead",
			Relation: r.Name,
			Pos:      r.Pos,
		})
	}
	return reports
}

// emitReports logs every report through the CLI logger and renders them
// to stderr, so stdout stays reserved for a program's JSON encoding.
func emitReports(reports []diag.Report) {
	if len(reports) == 0 {
		return
	}
	for _, r := range reports {
		r.Emit(logger)
	}
	fmt.Fprintln(os.Stderr, formatter.Render(reports))
}
