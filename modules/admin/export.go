package admin

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dmitrymomot/planmeter/pkg/subscription"
)

// SubscriptionsSheet is the worksheet name of the export.
const SubscriptionsSheet = "Subscriptions"

var exportHeader = []any{
	"ID", "User", "Plan ID", "Plan", "Status", "Auto renew",
	"Start", "End", "Data used (GB)", "Quota (GB)", "Usage %", "Cancelled at",
}

// WriteSubscriptionsXLSX writes subs as a single-sheet workbook.
func WriteSubscriptionsXLSX(w io.Writer, subs []subscription.Subscription) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SubscriptionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SubscriptionsSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(SubscriptionsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, sub := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(sub)
		if err := f.SetSheetRow(SubscriptionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SubscriptionsSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return f.Write(w)
}

func exportRow(sub subscription.Subscription) []any {
	planName := ""
	if sub.Plan != nil {
		planName = sub.Plan.Name
	}
	cancelledAt := ""
	if sub.CancelledAt != nil {
		cancelledAt = sub.CancelledAt.UTC().Format(time.RFC3339)
	}
	return []any{
		sub.ID.String(),
		sub.UserID,
		sub.PlanID,
		planName,
		string(sub.Status),
		sub.AutoRenew,
		sub.StartDate.UTC().Format(time.RFC3339),
		sub.EndDate.UTC().Format(time.RFC3339),
		sub.Usage.DataUsedGB,
		sub.Usage.QuotaGB,
		sub.Usage.Percent(),
		cancelledAt,
	}
}
