package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/kraftgate/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderAudit formats the health history with trend and alerts.
func RenderAudit(report domain.AuditReport) string {
	if report.Latest == nil {
		return "  " + dimStyle.Render("No audit history found. Run kraftgate check first.") + "\n"
	}

	var b strings.Builder
	latest := report.Latest
	title := headerStyle.Render("kraftgate audit")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(scoreColor(latest.HealthScore)).
		Render(fmt.Sprintf("health %d / 100", latest.Rounded()))
	b.WriteString(boxStyle.Render(title + "\n\n" + scoreStyled + "  " + trendArrow(report.Direction)))
	b.WriteString("\n\n")

	// ── Factors ──
	f := latest.Factors
	renderFactor(&b, "avg confidence", f.AvgConfidence)
	renderFactor(&b, "approval ratio", f.ApprovalRatio)
	renderFactor(&b, "compliance rate", f.ComplianceRate)
	renderFactor(&b, "cross validation", f.CrossValidationRate)
	renderFactor(&b, "duplicate free", f.DuplicateFreeRate)

	if p := report.Prediction; p != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			titleStyle.Render("Prediction"),
			dimStyle.Render(fmt.Sprintf("+7 runs %.1f  +30 runs %.1f  (slope %+.2f, R² %.2f)",
				p.Predicted7, p.Predicted30, p.Slope, p.RSquared)),
		)
	}

	renderAlerts(&b, report.Alerts)
	for _, a := range report.Anomalies {
		fmt.Fprintf(&b, "  %s %s\n", warnTagStyle.Render("anomaly"), dimStyle.Render(a.Message))
	}

	// ── History ──
	b.WriteString("\n  " + titleStyle.Render("History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")
	for i, s := range report.History {
		hash := s.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}

		line := fmt.Sprintf("  %s  %s  %s",
			dimStyle.Render(s.Timestamp.Format("2006-01-02 15:04")),
			faintStyle.Render(hash),
			lipgloss.NewStyle().Foreground(scoreColor(s.HealthScore)).Render(fmt.Sprintf("%5.1f", s.HealthScore)),
		)
		if i > 0 {
			diff := s.HealthScore - report.History[i-1].HealthScore
			if diff > 0.05 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.1f", diff))
			} else if diff < -0.05 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.1f", -diff))
			}
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderFactor(b *strings.Builder, name string, v float64) {
	pct := v * 100
	fmt.Fprintf(b, "  %s %s  %s\n",
		padRight(name, 20),
		coloredBar(pct, 20),
		dimStyle.Render(fmt.Sprintf("%5.1f%%", pct)),
	)
}

func renderAlerts(b *strings.Builder, alerts []domain.DegradationAlert) {
	if len(alerts) == 0 {
		return
	}
	b.WriteString("\n")
	for _, a := range alerts {
		tag := warnTagStyle.Render("warning ")
		if a.Level == domain.AlertCritical {
			tag = errorTagStyle.Render("critical")
		}
		fmt.Fprintf(b, "  %s %s\n", tag, a.Message)
	}
}

func trendArrow(d domain.TrendDirection) string {
	switch d {
	case domain.TrendImproving:
		return passStyle.Render("↑ improving")
	case domain.TrendDeclining:
		return failStyle.Render("↓ declining")
	default:
		return dimStyle.Render("→ stable")
	}
}

func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score)*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func shortenPath(path string) string {
	if idx := strings.Index(path, "internal/"); idx >= 0 {
		return path[idx:]
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
