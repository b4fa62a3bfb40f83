package formatter

type redefinitionFormatter struct{}

func (f *redefinitionFormatter) ReportTemplate() string {
	return `{{header .Severity .Code -}}
{{relation .Relation .Pos -}}
{{detail .Detail}}
  note: the earlier declaration wins; the later one is ignored
`
}
