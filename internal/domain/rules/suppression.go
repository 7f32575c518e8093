package rules

import "strings"

const ignoreMarker = "kraftgate-ignore"

// Suppressed reports whether a directive on line (1-based) or on the line
// immediately above it silences ruleID. Bare directives silence every rule.
func Suppressed(lines []string, line int, ruleID string) bool {
	if line <= 0 {
		return false
	}
	idx := line - 1
	if idx < len(lines) && lineSuppresses(lines[idx], ruleID) {
		return true
	}
	if idx > 0 && idx-1 < len(lines) && lineSuppresses(lines[idx-1], ruleID) {
		return true
	}
	return false
}

func lineSuppresses(line, ruleID string) bool {
	trimmed := strings.TrimSpace(line)
	checks := []func(string, string) (bool, bool){
		checkIgnore,
		checkNoqa,
		checkDisableNextLine,
		checkSuppressWarnings,
	}
	for _, check := range checks {
		if matched, suppressed := check(trimmed, ruleID); matched {
			return suppressed
		}
	}
	return false
}

// checkIgnore handles "// kraftgate-ignore [rule, ...]" after any common
// comment leader.
func checkIgnore(trimmed, ruleID string) (matched, suppressed bool) {
	pos := strings.Index(trimmed, ignoreMarker)
	if pos < 0 {
		return false, false
	}
	before := trimmed[:pos]
	if !strings.Contains(before, "//") && !strings.Contains(before, "#") &&
		!strings.Contains(before, "--") && !strings.Contains(before, "/*") {
		return false, false
	}
	after := strings.TrimSpace(trimmed[pos+len(ignoreMarker):])
	after = strings.TrimSpace(strings.TrimSuffix(after, "*/"))
	if after == "" || strings.HasPrefix(after, "--") {
		return true, true
	}
	return true, listContains(after, ruleID)
}

// checkNoqa handles "# noqa" and "# noqa: rule, ...".
func checkNoqa(trimmed, ruleID string) (matched, suppressed bool) {
	const marker = "# noqa"
	pos := strings.Index(trimmed, marker)
	if pos < 0 {
		return false, false
	}
	after := strings.TrimSpace(trimmed[pos+len(marker):])
	if rest, ok := strings.CutPrefix(after, ":"); ok {
		return true, listContains(rest, ruleID)
	}
	return true, true
}

// checkDisableNextLine handles "// eslint-disable-next-line [rule, ...]".
func checkDisableNextLine(trimmed, ruleID string) (matched, suppressed bool) {
	const marker = "eslint-disable-next-line"
	pos := strings.Index(trimmed, marker)
	if pos < 0 {
		return false, false
	}
	before := trimmed[:pos]
	if !strings.Contains(before, "//") && !strings.Contains(before, "/*") {
		return false, false
	}
	after := strings.TrimSpace(trimmed[pos+len(marker):])
	after = strings.TrimSpace(strings.TrimSuffix(after, "*/"))
	if after == "" {
		return true, true
	}
	return true, listContains(after, ruleID)
}

// checkSuppressWarnings handles @SuppressWarnings("rule") and
// @SuppressWarnings({"a", "b"}).
func checkSuppressWarnings(trimmed, ruleID string) (matched, suppressed bool) {
	const marker = "@SuppressWarnings"
	pos := strings.Index(trimmed, marker)
	if pos < 0 {
		return false, false
	}
	after := strings.TrimSpace(trimmed[pos+len(marker):])
	inner, ok := strings.CutPrefix(after, "(")
	if !ok {
		return true, true
	}
	inner = strings.TrimRight(inner, ")")
	inner = strings.Trim(inner, `{}"`)
	if inner == "all" {
		return true, true
	}
	return true, listContains(inner, ruleID)
}

func listContains(list, ruleID string) bool {
	if ruleID == "" {
		return true
	}
	for _, r := range strings.Split(list, ",") {
		if strings.Trim(strings.TrimSpace(r), `"{}`) == ruleID {
			return true
		}
	}
	return false
}
