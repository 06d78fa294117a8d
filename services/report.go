package services

import (
	"fmt"
	"io"
	"strings"

	"naver-land-tracker/models"
)

// Reporter prints the summaries of a run to a terminal.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter that writes to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Print writes one block per complex and trade type, or a notice when
// summaries is empty.
func (r *Reporter) Print(summaries []*models.ComplexSummary) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Fprintf(r.out, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(r.out, "\033[1;35m  📊 DAILY LISTING SUMMARY\033[0m\n")
	fmt.Fprintf(r.out, "\033[1;35m%s\033[0m\n\n", sep)

	if len(summaries) == 0 {
		fmt.Fprintf(r.out, "  No summaries produced\n")
		fmt.Fprintf(r.out, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	for _, s := range summaries {
		fmt.Fprintf(r.out, "\033[1;33m  Complex %s · %s (%s) · %s\033[0m\n",
			s.ComplexID, s.TradeType.Label(), s.TradeType, s.Date)
		fmt.Fprintf(r.out, "  %s\n", thin)
		fmt.Fprintf(r.out, "  Listings      : \033[1m%d\033[0m  (new %s, removed %s)\n",
			s.TotalListings, signedInt(s.NewListings, "+"), signedInt(s.RemovedListings, "-"))

		if s.AvgPrice > 0 {
			fmt.Fprintf(r.out, "  Average price : \033[1;32m%.0f만원\033[0m  %s\n",
				s.AvgPrice, colourChange(fmt.Sprintf("%+.0f (%+.1f%%)", s.AvgPriceChange, s.AvgPriceChangePct), s.AvgPriceChange))
			fmt.Fprintf(r.out, "  Minimum price : \033[1;32m%d만원\033[0m  %s\n",
				s.MinPrice, colourChange(fmt.Sprintf("%+d", s.MinPriceChange), float64(s.MinPriceChange)))
			fmt.Fprintf(r.out, "  Lowest        : %s\n", truncate(s.LowestListing, 60))
		} else {
			fmt.Fprintf(r.out, "  No price data available\n")
		}
		fmt.Fprintln(r.out)
	}

	fmt.Fprintf(r.out, "\033[1;35m%s\033[0m\n\n", sep)
}

func signedInt(n int, sign string) string {
	if n == 0 {
		return "0"
	}
	return fmt.Sprintf("%s%d", sign, n)
}

// colourChange paints rises red and drops blue, the usual convention for
// Korean price boards.
func colourChange(text string, delta float64) string {
	switch {
	case delta > 0:
		return "\033[31m" + text + "\033[0m"
	case delta < 0:
		return "\033[34m" + text + "\033[0m"
	default:
		return text
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
