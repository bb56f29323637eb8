package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-screener/internal/entity"
	"golang-stock-screener/internal/screener/dto"
	"golang-stock-screener/internal/screener/scorer"
)

// FormatScanSummary renders one completed scan as an HTML Telegram message,
// grouping signals by quality grade.
func FormatScanSummary(scanType string, signals []scorer.Signal, stats *entity.RunStats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s scan completed</b>\n", capitalize(scanType)))
	b.WriteString(fmt.Sprintf("Scanned %d stocks in %.0fs (%d failed)\n\n",
		stats.TotalStocks, stats.RuntimeSeconds, stats.FailedStocks))

	if len(signals) == 0 {
		b.WriteString("No signals found this run.")
		return b.String()
	}

	byGrade := map[string][]scorer.Signal{}
	for _, sig := range signals {
		byGrade[sig.QualityGrade] = append(byGrade[sig.QualityGrade], sig)
	}

	gradeIcons := []struct {
		grade string
		icon  string
	}{
		{scorer.GradeA, "🔥"},
		{scorer.GradeB, "✅"},
		{scorer.GradeC, "👀"},
	}

	for _, g := range gradeIcons {
		group := byGrade[g.grade]
		if len(group) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s <b>Grade %s</b>\n", g.icon, g.grade))
		for _, sig := range group {
			b.WriteString(fmt.Sprintf("• <b>%s</b> $%.2f (%+.1f%%) score %d\n",
				sig.Symbol, sig.Price, sig.ChangePercent, sig.Score))
			b.WriteString(fmt.Sprintf("   %s\n", strings.Join(sig.Tags, ", ")))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatLongRunWarning flags a scan that blew past its expected runtime.
func FormatLongRunWarning(scanType string, runtime time.Duration, totalStocks int) string {
	return fmt.Sprintf("⚠️ <b>%s scan took %s</b> for %d stocks. Consider narrowing the universe or raising the worker count.",
		capitalize(scanType), runtime.Round(time.Second), totalStocks)
}

// FormatDailyReport renders the end-of-day digest.
func FormatDailyReport(summary *entity.DailySummary, signals []entity.Signal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>Daily report %s</b>\n", summary.SummaryDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Signals: %d across %d stocks\n", summary.TotalSignals, summary.UniqueStocks))
	b.WriteString(fmt.Sprintf("Avg score: %.1f | High score (70+): %d\n", summary.AvgScore, summary.HighScoreCount))

	if len(signals) == 0 {
		b.WriteString("\nQuiet day, nothing triggered.")
		return b.String()
	}

	b.WriteString("\n<b>Top signals</b>\n")
	seen := map[string]bool{}
	listed := 0
	for _, sig := range signals {
		if seen[sig.Symbol] {
			continue
		}
		seen[sig.Symbol] = true
		b.WriteString(fmt.Sprintf("• <b>%s</b> score %d (grade %s)\n", sig.Symbol, sig.Score, sig.QualityGrade))
		listed++
		if listed >= 5 {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWeeklyReport renders the optimizer window summary, including any
// weight adjustments it made.
func FormatWeeklyReport(analysis *entity.WeeklyAnalysis, typeStats []dto.SignalTypeStats, adjustments []dto.WeightAdjustment) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Weekly analysis %s → %s</b>\n",
		analysis.WeekStart.Format("Jan 2"), analysis.WeekEnd.Format("Jan 2")))
	b.WriteString(fmt.Sprintf("Signals: %d | Successful: %d | Accuracy: %.1f%%\n",
		analysis.TotalSignals, analysis.SuccessfulSignals, analysis.AccuracyRate))
	b.WriteString(fmt.Sprintf("Avg 7-day return: %+.2f%%\n", analysis.AvgReturn))

	if len(typeStats) > 0 {
		b.WriteString("\n<b>By signal type</b>\n")
		for _, st := range typeStats {
			b.WriteString(fmt.Sprintf("• %s: %.0f%% over %d samples (avg %+.2f%%)\n",
				st.SignalType, st.Accuracy, st.Samples, st.AvgReturn))
		}
	}

	if len(adjustments) > 0 {
		b.WriteString("\n<b>Weight adjustments</b>\n")
		for _, adj := range adjustments {
			b.WriteString(fmt.Sprintf("• %s: %d → %d (%s)\n",
				adj.SignalType, adj.OldWeight, adj.NewWeight, adj.Reason))
		}
	} else {
		b.WriteString("\nNo weight adjustments this week.")
	}

	if analysis.AnalysisNotes != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s", analysis.AnalysisNotes))
	}

	return strings.TrimRight(b.String(), "\n")
}
