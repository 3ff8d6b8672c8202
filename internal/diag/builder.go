package diag

import "sharpfix/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithSecondary(spans ...source.Span) Diagnostic {
	d.Secondary = append(append([]source.Span(nil), d.Secondary...), spans...)
	return d
}

func (d Diagnostic) WithProp(key, value string) Diagnostic {
	props := make(map[string]string, len(d.Props)+1)
	for k, v := range d.Props {
		props[k] = v
	}
	props[key] = value
	d.Props = props
	return d
}
