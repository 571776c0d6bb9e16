package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adanianlabs/hrassist/analytics"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatHeadcount(report *analytics.HeadcountReport) string {
	var b strings.Builder
	b.WriteString("**Current Headcount Summary**\n\n")
	fmt.Fprintf(&b, "We currently have **%d active employees** in the organization.\n\n", report.TotalHeadcount)

	if len(report.ByDepartment) > 0 {
		b.WriteString("**Department Breakdown:**\n")
		for _, dept := range sortedKeys(report.ByDepartment) {
			fmt.Fprintf(&b, "- %s: %d employees\n", dept, report.ByDepartment[dept])
		}
	}

	fmt.Fprintf(&b, "\n*Data last updated: %s*", report.LastUpdated.Format("2006-01-02 15:04"))
	return b.String()
}

func formatAttrition(report *analytics.AttritionReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Attrition Analysis (%d months)**\n\n", report.PeriodMonths)
	fmt.Fprintf(&b, "- **Attrition Rate:** %.2f%%\n", report.AttritionRatePercent)
	fmt.Fprintf(&b, "- **Total Departures:** %d employees\n\n", report.TotalTerminations)

	if len(report.ByDepartment) > 0 {
		b.WriteString("**Departures by Department:**\n")
		for _, dept := range sortedKeys(report.ByDepartment) {
			fmt.Fprintf(&b, "- %s: %d departures\n", dept, report.ByDepartment[dept])
		}
	}

	fmt.Fprintf(&b, "\n*Analysis period: Last %d months*", report.PeriodMonths)
	return b.String()
}

func formatProbation(report *analytics.ProbationReport) string {
	var b strings.Builder
	b.WriteString("**Probation Review Status**\n\n")

	if report.TotalAlerts == 0 {
		b.WriteString("**Good news!** No immediate probation review alerts.\n")
	} else {
		fmt.Fprintf(&b, "**%d probation review alerts require attention:**\n\n", report.TotalAlerts)

		if len(report.OverdueReviews) > 0 {
			fmt.Fprintf(&b, "**Overdue Reviews (%d):**\n", len(report.OverdueReviews))
			for i, review := range report.OverdueReviews {
				if i == 5 {
					fmt.Fprintf(&b, "- ... and %d more\n", len(report.OverdueReviews)-5)
					break
				}
				fmt.Fprintf(&b, "- %s - %d days overdue\n", review.Name, -review.DaysUntilEnd)
			}
			b.WriteString("\n")
		}

		if len(report.UpcomingReviews) > 0 {
			fmt.Fprintf(&b, "**Upcoming Reviews (%d):**\n", len(report.UpcomingReviews))
			for i, review := range report.UpcomingReviews {
				if i == 5 {
					fmt.Fprintf(&b, "- ... and %d more\n", len(report.UpcomingReviews)-5)
					break
				}
				fmt.Fprintf(&b, "- %s - %d days remaining\n", review.Name, review.DaysUntilEnd)
			}
		}
	}

	fmt.Fprintf(&b, "\n*Data last updated: %s*", report.LastUpdated.Format("2006-01-02 15:04"))
	return b.String()
}

func formatAppraisals(report *analytics.AppraisalReport) string {
	if report.Message != "" {
		return report.Message
	}

	var b strings.Builder
	cycleName := "Current Cycle"
	if report.Cycle != nil && report.Cycle.Name != "" {
		cycleName = report.Cycle.Name
	}
	fmt.Fprintf(&b, "**Appraisal Status - %s**\n\n", cycleName)

	b.WriteString("**Overall Progress:**\n")
	fmt.Fprintf(&b, "- **Completion Rate:** %.2f%%\n", report.Completion.CompletionRatePercent)
	fmt.Fprintf(&b, "- **Completed:** %d/%d appraisals\n", report.Completion.CompletedAppraisals, report.Completion.TotalAppraisals)
	fmt.Fprintf(&b, "- **Pending:** %d appraisals\n", report.Completion.PendingAppraisals)

	if report.Cycle != nil {
		endDate := report.Cycle.EndDate.Format("2006-01-02")
		if report.Cycle.IsOverdue {
			fmt.Fprintf(&b, "\n**Status:** Cycle is overdue (ended %s)\n", endDate)
		} else {
			fmt.Fprintf(&b, "\n**Cycle End Date:** %s\n", endDate)
		}
	}

	if len(report.ByDepartment) > 0 {
		b.WriteString("\n**Department Progress:**\n")
		for _, dept := range sortedKeys(report.ByDepartment) {
			fmt.Fprintf(&b, "- %s: %.1f%% complete\n", dept, report.ByDepartment[dept].CompletionRate)
		}
	}

	return b.String()
}

func formatContracts(report *analytics.ContractReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Contract Expiry Alerts (Next %d days)**\n\n", report.AlertPeriodDays)

	if report.TotalExpiring == 0 {
		fmt.Fprintf(&b, "**Good news!** No contracts expiring in the next %d days.\n", report.AlertPeriodDays)
	} else {
		fmt.Fprintf(&b, "**%d contracts require attention:**\n\n", report.TotalExpiring)
		for i, contract := range report.ExpiringContracts {
			if i == 10 {
				fmt.Fprintf(&b, "- ... and %d more contracts\n", report.TotalExpiring-10)
				break
			}
			fmt.Fprintf(&b, "- **%s** (%s) - %d days remaining\n", contract.Name, contract.ContractType, contract.DaysUntilExpiry)
		}
	}

	fmt.Fprintf(&b, "\n*Alert period: %d days ahead*", report.AlertPeriodDays)
	return b.String()
}

func formatDashboard(report *analytics.DashboardSummary) string {
	var b strings.Builder
	b.WriteString("**HR Dashboard Summary**\n\n")
	fmt.Fprintf(&b, "- **Total Employees:** %d\n", report.TotalEmployees)
	fmt.Fprintf(&b, "- **Attrition Rate:** %.2f%% (last 3 months)\n", report.AttritionRate)
	fmt.Fprintf(&b, "- **Appraisal Completion:** %.2f%%\n", report.AppraisalCompletion)
	fmt.Fprintf(&b, "- **Active Alerts:** %d (probation + contract expiry)\n", report.TotalAlerts)

	if report.TotalAlerts > 0 {
		b.WriteString("\n**Tip:** Ask about specific areas like 'probation status' or 'contract expiry alerts' for detailed information.\n")
	}

	fmt.Fprintf(&b, "\n*Data last updated: %s*", report.LastUpdated.Format("2006-01-02 15:04"))
	return b.String()
}
