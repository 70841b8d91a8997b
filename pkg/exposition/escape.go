package exposition

import "strings"

var labelValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

// EscapeLabelValue escapes s for use between the quotes of a label value.
// Only '"', '\' and newline are escaped; s is returned as is when it holds none of them.
func EscapeLabelValue(s string) string {
	if !strings.ContainsAny(s, "\"\\\n") {
		return s
	}
	return labelValueEscaper.Replace(s)
}

func escapeHelp(s string) string {
	if !strings.ContainsAny(s, "\\\n") {
		return s
	}
	return helpEscaper.Replace(s)
}
