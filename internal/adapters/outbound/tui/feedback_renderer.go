package tui

import (
	"fmt"
	"strings"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/abdidvp/kraftgate/internal/domain/feedback"
)

// RenderFeedback summarizes the effect of one feedback action.
func RenderFeedback(o domain.FeedbackOutcome) string {
	var b strings.Builder
	if o.Duplicate {
		b.WriteString("  " + dimStyle.Render("Duplicate submission, nothing recorded.") + "\n")
	} else {
		fmt.Fprintf(&b, "  %s %s %s\n",
			passStyle.Render("✓"),
			titleStyle.Render(string(o.Record.Action)),
			dimStyle.Render(o.Record.ViolationID),
		)
	}

	fmt.Fprintf(&b, "  %s %s\n", padRight("confidence", 14),
		dimStyle.Render(fmt.Sprintf("%.3f  (α %.2f, β %.2f)", o.Confidence, o.Alpha, o.Beta)))
	if o.Meaningful {
		fmt.Fprintf(&b, "  %s %s\n", padRight("fp rate", 14), fpRate(o.FalsePositive, o.Alert))
	} else {
		fmt.Fprintf(&b, "  %s %s\n", padRight("fp rate", 14), dimStyle.Render("not enough findings yet"))
	}
	if o.Disabled {
		b.WriteString("  " + errorTagStyle.Render("detector disabled") + " " +
			dimStyle.Render("sustained false positives") + "\n")
	}
	if len(o.AbusiveAuthors) > 0 {
		b.WriteString("  " + warnTagStyle.Render("review") + " " +
			dimStyle.Render("unusual dismissal volume: "+strings.Join(o.AbusiveAuthors, ", ")) + "\n")
	}
	return b.String()
}

// RenderDetectors lists per-detector feedback metrics.
func RenderDetectors(ms []feedback.Metrics) string {
	if len(ms) == 0 {
		return "  " + dimStyle.Render("No feedback recorded.") + "\n"
	}
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Detectors") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 64)) + "\n")
	for _, m := range ms {
		state := passStyle.Render("active  ")
		if m.Disabled {
			state = failStyle.Render("disabled")
		}
		rate := dimStyle.Render("   -  ")
		if m.Meaningful {
			rate = fpRate(m.FPRate, false)
		}
		fmt.Fprintf(&b, "  %s %s  fp %s  %s\n",
			state,
			titleStyle.Render(padRight(m.ID, 24)),
			rate,
			faintStyle.Render(fmt.Sprintf("%d findings, %d fixed, %d dismissed", m.Findings, m.Fixed, m.Dismissed)),
		)
	}
	b.WriteString("\n")
	return b.String()
}

func fpRate(rate float64, alert bool) string {
	s := fmt.Sprintf("%5.1f%%", rate*100)
	if alert {
		return warnTagStyle.Render(s)
	}
	return dimStyle.Render(s)
}
