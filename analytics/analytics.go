// Package analytics defines the structured HR metric queries the assistant
// can answer without document retrieval.
package analytics

import (
	"context"
	"time"
)

// HeadcountReport summarises the active workforce.
type HeadcountReport struct {
	TotalHeadcount int            `json:"total_headcount"`
	ByDepartment   map[string]int `json:"by_department"`
	ByRole         map[string]int `json:"by_role"`
	LastUpdated    time.Time      `json:"last_updated"`
}

// MonthlyMovement counts hires and terminations within one calendar month.
type MonthlyMovement struct {
	Hires        int `json:"hires"`
	Terminations int `json:"terminations"`
}

// HeadcountTrends reports month-by-month hiring and departure volumes.
type HeadcountTrends struct {
	MonthlyTrends map[string]MonthlyMovement `json:"monthly_trends"` // keyed by YYYY-MM
	PeriodMonths  int                        `json:"period_months"`
	LastUpdated   time.Time                  `json:"last_updated"`
}

// AttritionReport covers departures over a trailing period.
type AttritionReport struct {
	PeriodMonths         int            `json:"period_months"`
	TotalTerminations    int            `json:"total_terminations"`
	AttritionRatePercent float64        `json:"attrition_rate_percent"`
	ByDepartment         map[string]int `json:"by_department"`
	LastUpdated          time.Time      `json:"last_updated"`
}

// ProbationAlert flags one employee whose probation review needs attention.
type ProbationAlert struct {
	PersonID         string    `json:"person_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	ManagerID        string    `json:"manager_id,omitempty"`
	ProbationEndDate time.Time `json:"probation_end_date"`
	DaysUntilEnd     int       `json:"days_until_end"` // negative when overdue
	ContractType     string    `json:"contract_type"`
}

// ProbationReport splits probation alerts into upcoming and overdue reviews.
type ProbationReport struct {
	UpcomingReviews []ProbationAlert `json:"upcoming_reviews"`
	OverdueReviews  []ProbationAlert `json:"overdue_reviews"`
	TotalAlerts     int              `json:"total_alerts"`
	LastUpdated     time.Time        `json:"last_updated"`
}

// CycleInfo describes the appraisal cycle being reported on.
type CycleInfo struct {
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Stage     string    `json:"stage"`
	EndDate   time.Time `json:"end_date"`
	IsOverdue bool      `json:"is_overdue"`
}

// CompletionStats aggregates appraisal completion for the cycle.
type CompletionStats struct {
	TotalAppraisals       int     `json:"total_appraisals"`
	CompletedAppraisals   int     `json:"completed_appraisals"`
	PendingAppraisals     int     `json:"pending_appraisals"`
	CompletionRatePercent float64 `json:"completion_rate_percent"`
}

// DeptCompletion tracks appraisal progress inside one department.
type DeptCompletion struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// AppraisalReport covers the most recent appraisal cycle. When no cycle
// exists, Cycle is nil and Message explains the absence.
type AppraisalReport struct {
	Cycle        *CycleInfo                `json:"cycle_info,omitempty"`
	Completion   CompletionStats           `json:"completion_stats"`
	ByDepartment map[string]DeptCompletion `json:"by_department,omitempty"`
	Message      string                    `json:"message,omitempty"`
	LastUpdated  time.Time                 `json:"last_updated"`
}

// ContractAlert flags one contract approaching its end date.
type ContractAlert struct {
	PersonID        string    `json:"person_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ManagerID       string    `json:"manager_id,omitempty"`
	ContractType    string    `json:"contract_type"`
	EndDate         time.Time `json:"end_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// ContractReport lists contracts expiring within the alert window.
type ContractReport struct {
	ExpiringContracts []ContractAlert `json:"expiring_contracts"`
	TotalExpiring     int             `json:"total_expiring"`
	AlertPeriodDays   int             `json:"alert_period_days"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// DashboardSummary rolls the individual reports into one overview. Attrition
// covers the trailing three months.
type DashboardSummary struct {
	TotalEmployees      int       `json:"total_employees"`
	AttritionRate       float64   `json:"attrition_rate"`
	AppraisalCompletion float64   `json:"appraisal_completion"`
	TotalAlerts         int       `json:"total_alerts"` // probation + contract expiry
	LastUpdated         time.Time `json:"last_updated"`

	Headcount  *HeadcountReport `json:"headcount,omitempty"`
	Trends     *HeadcountTrends `json:"headcount_trends,omitempty"`
	Attrition  *AttritionReport `json:"attrition,omitempty"`
	Probation  *ProbationReport `json:"probation_alerts,omitempty"`
	Appraisals *AppraisalReport `json:"appraisal_status,omitempty"`
	Contracts  *ContractReport  `json:"contract_alerts,omitempty"`
}

// Service exposes the structured read operations the router dispatches to.
// Implementations perform no writes.
type Service interface {
	CurrentHeadcount(ctx context.Context) (*HeadcountReport, error)
	Trends(ctx context.Context, months int) (*HeadcountTrends, error)
	Attrition(ctx context.Context, periodMonths int) (*AttritionReport, error)
	ProbationAlerts(ctx context.Context) (*ProbationReport, error)
	AppraisalStatus(ctx context.Context) (*AppraisalReport, error)
	ContractExpiryAlerts(ctx context.Context, daysAhead int) (*ContractReport, error)
	DashboardSummary(ctx context.Context) (*DashboardSummary, error)
}
