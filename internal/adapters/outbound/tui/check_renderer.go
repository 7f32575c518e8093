package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/kraftgate/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// maxListed caps the violations printed per run.
const maxListed = 50

// RenderCheckReport renders a CheckReport as a styled TUI string.
func RenderCheckReport(report *domain.CheckReport) string {
	var b strings.Builder

	// Header
	verdict := failStyle.Bold(true).Render("FAILED")
	if report.Passed() {
		verdict = passStyle.Bold(true).Render("PASSED")
	}
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(scoreColor(report.Policy.OverallScore)).
		Render(fmt.Sprintf("%.1f", report.Policy.OverallScore))
	policyLine := titleStyle.Render(report.Policy.Policy) + "  " +
		dimStyle.Render(string(report.Policy.AggregationMode)) + "  " + scoreStyled + "  " + verdict
	healthLine := dimStyle.Render(fmt.Sprintf("health %d/100  run %s", report.Health.Rounded(), report.RunID))
	b.WriteString(boxStyle.Render(policyLine + "\n" + healthLine))
	b.WriteString("\n\n")

	// Gates
	for _, g := range report.Gates {
		renderGate(&b, g, required(report.Policy, g.GateID))
	}
	if report.Policy.Reason != "" {
		b.WriteString("\n  " + hintStyle.Render(report.Policy.Reason) + "\n")
	}

	renderAlerts(&b, report.Alerts)

	// Violations
	active := report.ActiveViolations()
	b.WriteString("\n  " + separatorLine + "\n\n")
	if len(active) == 0 {
		b.WriteString("  " + passStyle.Render("No active violations.") + "\n")
	} else {
		renderViolations(&b, active)
	}
	if suppressed := len(report.Violations) - len(active); suppressed > 0 {
		b.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d suppressed inline", suppressed)) + "\n")
	}

	if len(report.Duplicates) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render("Possible duplicate patterns"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(report.Duplicates))),
		)
		for _, d := range report.Duplicates {
			fmt.Fprintf(&b, "    %s %s ~ %s  %s\n",
				warnStyle.Render("●"), d.PatternA, d.PatternB,
				faintStyle.Render(fmt.Sprintf("%s %.0f%%", d.Scope, d.Similarity*100)),
			)
		}
	}

	if !report.Persisted {
		b.WriteString("\n  " + hintStyle.Render("Run not persisted.") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderGate(b *strings.Builder, g domain.GateResult, req bool) {
	var icon, status string
	switch g.Status {
	case domain.StatusPass:
		icon, status = passStyle.Render("●"), passStyle.Render("pass")
	case domain.StatusWarn:
		icon, status = warnStyle.Render("●"), warnStyle.Render("warn")
	case domain.StatusFail:
		icon, status = failStyle.Render("●"), failStyle.Render("fail")
	default:
		icon, status = skipStyle.Render("○"), skipStyle.Render("skip")
	}

	name := padRight(string(g.GateID), 26)
	if req {
		name = padRight(string(g.GateID)+" *", 26)
	}
	score := dimStyle.Render("   -")
	if g.Status != domain.StatusSkip {
		score = lipgloss.NewStyle().Foreground(scoreColor(g.Score)).Render(fmt.Sprintf("%5.1f", g.Score))
	}
	fmt.Fprintf(b, "  %s %s %s %s  %s\n", icon, titleStyle.Render(name), status, score, faintStyle.Render(g.Summary))
}

func renderViolations(b *strings.Builder, vs []domain.Violation) {
	sorted := append([]domain.Violation(nil), vs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Severity > sorted[j].Severity })

	errors, warnings, infos := countSeverities(sorted)
	b.WriteString("  " + titleStyle.Render("Violations") + "  ")
	if errors > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errors)) + "  ")
	}
	if warnings > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warnings)) + "  ")
	}
	if infos > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infos)))
	}
	b.WriteString("\n\n")

	for i, v := range sorted {
		if i == maxListed {
			fmt.Fprintf(b, "    %s\n", dimStyle.Render(fmt.Sprintf("… %d more", len(sorted)-maxListed)))
			break
		}
		loc := fmt.Sprintf("%s:%d", shortenPath(v.File), v.Line)
		line := fmt.Sprintf("    %s %s  %s", severityTag(v.Severity), fileStyle.Render(loc), v.RuleID)
		if v.IsNew {
			line += "  " + warnTagStyle.Render("new")
		}
		b.WriteString(line + "\n")
		if v.Message != "" {
			fmt.Fprintf(b, "          %s\n", dimStyle.Render(v.Message))
		}
		if v.QuickFix != nil {
			fmt.Fprintf(b, "          %s\n", hintStyle.Render("fix: "+v.QuickFix.Description))
		}
	}
}

func required(p domain.PolicyResult, id domain.GateID) bool {
	for _, g := range p.PerGate {
		if g.GateID == id {
			return g.Required
		}
	}
	return false
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	case domain.SeverityInfo:
		return infoTagStyle.Render("info ")
	default:
		return faintStyle.Render("hint ")
	}
}

func countSeverities(vs []domain.Violation) (errors, warnings, infos int) {
	for _, v := range vs {
		switch v.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}
