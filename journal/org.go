package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatFillOrg renders a FillRecord as an Org-mode block. Structured facts
// live in a PROPERTIES drawer; a Notes heading is left for the reader.
func FormatFillOrg(r FillRecord) string {
	heading := fmt.Sprintf("** %s %d %s (%s)", strings.ToUpper(r.Side), r.Quantity, r.Symbol, shortID(r.FillID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.FillID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", r.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", r.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", r.Side))
	b.WriteString(fmt.Sprintf(":QUANTITY: %d\n", r.Quantity))
	b.WriteString(fmt.Sprintf(":PRICE: %.2f\n", r.Price))
	b.WriteString(fmt.Sprintf(":TOTAL: %.2f\n", r.Total))
	b.WriteString(fmt.Sprintf(":AVG_COST: %.2f\n", r.AvgCost))
	if r.Side == "sell" {
		b.WriteString(fmt.Sprintf(":REALIZED_PER_SHARE: %.2f\n", r.RealizedPerShare))
	}
	b.WriteString(fmt.Sprintf(":CASH_AFTER: %.2f\n", r.CashAfter))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Notes\n- \n")

	return b.String()
}

// FormatFillsOrg renders multiple fills separated by blank lines.
func FormatFillsOrg(fills []FillRecord) string {
	var b strings.Builder
	for i, r := range fills {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatFillOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
