// Package formatter renders a transformation run's diagnostics into
// colored, human-readable text for the CLI.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/dlogc/dlc/internal/diag"
)

var (
	errorStyle    = color.New(color.FgRed, color.Bold)
	warningStyle  = color.New(color.FgHiYellow, color.Bold)
	codeStyle     = color.New(color.FgYellow, color.Bold)
	relationStyle = color.New(color.FgCyan, color.Bold)
	posStyle      = color.New(color.FgHiBlue, color.Bold)
	detailStyle   = color.New(color.FgWhite)
)

// reportFormatter wraps the template a Code renders through.
type reportFormatter interface {
	ReportTemplate() string
}

func getReportFormatter(code diag.Code) reportFormatter {
	switch code {
	case diag.CodeRedefinition:
		return &redefinitionFormatter{}
	case diag.CodeNormaliserFallback:
		return &fallbackFormatter{}
	default:
		return &generalFormatter{}
	}
}

// reportData is the template data a reportFormatter's template renders
// against.
type reportData struct {
	Severity string
	Code     string
	Relation string
	Pos      string
	Detail   string
}

// Render formats every report in order, separated by blank lines.
func Render(reports []diag.Report) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(buildReport(r))
	}
	return b.String()
}

func buildReport(r diag.Report) string {
	data := reportData{
		Severity: r.Severity.String(),
		Code:     r.Code.String(),
		Detail:   r.Detail,
	}
	if len(r.Relation) > 0 {
		data.Relation = r.Relation.String()
	}
	if r.Pos.IsValid() {
		data.Pos = fmt.Sprintf("%d", r.Pos)
	}

	funcMap := template.FuncMap{
		"header":   header,
		"relation": relation,
		"detail":   detail,
	}

	formatter := getReportFormatter(r.Code)
	tmpl := template.Must(template.New("report").Funcs(funcMap).Parse(formatter.ReportTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("error formatting report: %v", err)
	}
	return buf.String()
}

func header(severity, code string) string {
	var out string
	if severity == "error" {
		out = errorStyle.Sprintf("error: ")
	} else {
		out = warningStyle.Sprintf("warning: ")
	}
	out += codeStyle.Sprintf("%s\n", code)
	return out
}

func relation(name, pos string) string {
	if name == "" {
		return ""
	}
	out := relationStyle.Sprintf("  --> %s", name)
	if pos != "" {
		out += posStyle.Sprintf(" @%s", pos)
	}
	return out + "\n"
}

func detail(msg string) string {
	return detailStyle.Sprintf("  %s\n", msg)
}
