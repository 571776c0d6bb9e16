// Package pg implements the analytics service with direct SQL over the HR
// schema in PostgreSQL.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"time"

	_ "github.com/lib/pq"

	"github.com/adanianlabs/hrassist/analytics"
	"github.com/adanianlabs/hrassist/pkg/logging"
)

// Service runs the structured HR queries against PostgreSQL.
type Service struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ analytics.Service = (*Service)(nil)

// Config holds connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultConfig returns a local development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:    "127.0.0.1",
		Port:    5432,
		User:    "postgres",
		DBName:  "hrassist",
		SSLMode: "disable",
	}
}

// New connects to the HR database.
func New(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return &Service{
		db:     db,
		logger: logging.WithComponent("hr_analytics"),
		now:    time.Now,
	}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *sql.DB) *Service {
	return &Service{
		db:     db,
		logger: logging.WithComponent("hr_analytics"),
		now:    time.Now,
	}
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

// CurrentHeadcount counts active employees with department and role breakdowns.
func (s *Service) CurrentHeadcount(ctx context.Context) (*analytics.HeadcountReport, error) {
	report := &analytics.HeadcountReport{
		ByDepartment: make(map[string]int),
		ByRole:       make(map[string]int),
		LastUpdated:  s.now(),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM people WHERE employment_status = 'active'`,
	).Scan(&report.TotalHeadcount)
	if err != nil {
		return nil, fmt.Errorf("failed to count active employees: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT COALESCE(o.name, 'Unknown'), COUNT(*)
	FROM people p
	LEFT JOIN org_unit o ON o.id = p.org_unit_id
	WHERE p.employment_status = 'active'
	GROUP BY o.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by department: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var count int
		if err := rows.Scan(&dept, &count); err != nil {
			return nil, fmt.Errorf("failed to scan department count: %w", err)
		}
		report.ByDepartment[dept] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department counts: %w", err)
	}

	roleRows, err := s.db.QueryContext(ctx, `
	SELECT COALESCE(hr_role, 'employee'), COUNT(*)
	FROM people
	WHERE employment_status = 'active'
	GROUP BY hr_role`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by role: %w", err)
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var role string
		var count int
		if err := roleRows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		report.ByRole[role] = count
	}
	if err := roleRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role counts: %w", err)
	}

	return report, nil
}

// Trends reports monthly hire and termination volumes over the trailing
// period.
func (s *Service) Trends(ctx context.Context, months int) (*analytics.HeadcountTrends, error) {
	if months <= 0 {
		months = 6
	}
	since := s.now().AddDate(0, 0, -months*30)

	trends := &analytics.HeadcountTrends{
		MonthlyTrends: make(map[string]analytics.MonthlyMovement),
		PeriodMonths:  months,
		LastUpdated:   s.now(),
	}

	hireRows, err := s.db.QueryContext(ctx, `
	SELECT to_char(started_on, 'YYYY-MM'), COUNT(*)
	FROM people
	WHERE started_on >= $1
	GROUP BY 1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hires: %w", err)
	}
	defer hireRows.Close()
	for hireRows.Next() {
		var month string
		var count int
		if err := hireRows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hire count: %w", err)
		}
		movement := trends.MonthlyTrends[month]
		movement.Hires = count
		trends.MonthlyTrends[month] = movement
	}
	if err := hireRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hires: %w", err)
	}

	termRows, err := s.db.QueryContext(ctx, `
	SELECT to_char(ended_on, 'YYYY-MM'), COUNT(*)
	FROM people
	WHERE ended_on >= $1
	GROUP BY 1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate terminations: %w", err)
	}
	defer termRows.Close()
	for termRows.Next() {
		var month string
		var count int
		if err := termRows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan termination count: %w", err)
		}
		movement := trends.MonthlyTrends[month]
		movement.Terminations = count
		trends.MonthlyTrends[month] = movement
	}
	if err := termRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating terminations: %w", err)
	}

	return trends, nil
}

// Attrition computes the departure rate over the trailing period against the
// current active headcount.
func (s *Service) Attrition(ctx context.Context, periodMonths int) (*analytics.AttritionReport, error) {
	if periodMonths <= 0 {
		periodMonths = 12
	}
	end := s.now()
	start := end.AddDate(0, 0, -periodMonths*30)

	report := &analytics.AttritionReport{
		PeriodMonths: periodMonths,
		ByDepartment: make(map[string]int),
		LastUpdated:  s.now(),
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT COALESCE(o.name, 'Unknown'), COUNT(*)
	FROM people p
	LEFT JOIN org_unit o ON o.id = p.org_unit_id
	WHERE p.ended_on >= $1 AND p.ended_on <= $2
	GROUP BY o.name`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate terminations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var count int
		if err := rows.Scan(&dept, &count); err != nil {
			return nil, fmt.Errorf("failed to scan termination count: %w", err)
		}
		report.ByDepartment[dept] = count
		report.TotalTerminations += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating terminations: %w", err)
	}

	var headcount int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM people WHERE employment_status = 'active'`,
	).Scan(&headcount)
	if err != nil {
		return nil, fmt.Errorf("failed to count active employees: %w", err)
	}
	if headcount < 1 {
		headcount = 1
	}
	report.AttritionRatePercent = round2(float64(report.TotalTerminations) / float64(headcount) * 100)

	return report, nil
}

// ProbationAlerts lists employees whose probation ends within 14 days or has
// already passed without a review.
func (s *Service) ProbationAlerts(ctx context.Context) (*analytics.ProbationReport, error) {
	today := truncateDay(s.now())

	rows, err := s.db.QueryContext(ctx, `
	SELECT p.id, p.first_name, p.last_name, p.work_email,
	       COALESCE(p.manager_id::text, ''), c.probation_end_date,
	       COALESCE(c.contract_type, '')
	FROM employment_contract c
	JOIN people p ON p.id = c.person_id
	WHERE c.probation_end_date IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query probation contracts: %w", err)
	}
	defer rows.Close()

	report := &analytics.ProbationReport{LastUpdated: s.now()}
	for rows.Next() {
		var alert analytics.ProbationAlert
		var first, last string
		if err := rows.Scan(&alert.PersonID, &first, &last, &alert.Email,
			&alert.ManagerID, &alert.ProbationEndDate, &alert.ContractType); err != nil {
			return nil, fmt.Errorf("failed to scan probation contract: %w", err)
		}
		alert.Name = first + " " + last
		alert.DaysUntilEnd = daysBetween(today, truncateDay(alert.ProbationEndDate))

		switch {
		case alert.DaysUntilEnd < 0:
			report.OverdueReviews = append(report.OverdueReviews, alert)
		case alert.DaysUntilEnd <= 14:
			report.UpcomingReviews = append(report.UpcomingReviews, alert)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating probation contracts: %w", err)
	}

	report.TotalAlerts = len(report.UpcomingReviews) + len(report.OverdueReviews)
	return report, nil
}

// AppraisalStatus reports completion of the most recently created appraisal
// cycle.
func (s *Service) AppraisalStatus(ctx context.Context) (*analytics.AppraisalReport, error) {
	report := &analytics.AppraisalReport{LastUpdated: s.now()}

	var cycleID string
	cycle := &analytics.CycleInfo{}
	err := s.db.QueryRowContext(ctx, `
	SELECT id, name, year, stage, end_date
	FROM appraisal_cycle
	ORDER BY created_at DESC
	LIMIT 1`).Scan(&cycleID, &cycle.Name, &cycle.Year, &cycle.Stage, &cycle.EndDate)
	if err == sql.ErrNoRows {
		report.Message = "No active appraisal cycles found"
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load appraisal cycle: %w", err)
	}
	cycle.IsOverdue = truncateDay(s.now()).After(truncateDay(cycle.EndDate))
	report.Cycle = cycle

	rows, err := s.db.QueryContext(ctx, `
	SELECT COALESCE(o.name, 'Unknown'), r.status
	FROM appraisal_record r
	JOIN people p ON p.id = r.person_id
	LEFT JOIN org_unit o ON o.id = p.org_unit_id
	WHERE r.cycle_id = $1`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query appraisal records: %w", err)
	}
	defer rows.Close()

	byDept := make(map[string]analytics.DeptCompletion)
	for rows.Next() {
		var dept, status string
		if err := rows.Scan(&dept, &status); err != nil {
			return nil, fmt.Errorf("failed to scan appraisal record: %w", err)
		}
		completion := byDept[dept]
		completion.Total++
		report.Completion.TotalAppraisals++
		if status == "completed" {
			completion.Completed++
			report.Completion.CompletedAppraisals++
		}
		byDept[dept] = completion
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appraisal records: %w", err)
	}

	for dept, completion := range byDept {
		total := completion.Total
		if total < 1 {
			total = 1
		}
		completion.CompletionRate = float64(completion.Completed) / float64(total) * 100
		byDept[dept] = completion
	}
	report.ByDepartment = byDept

	total := report.Completion.TotalAppraisals
	if total < 1 {
		total = 1
	}
	report.Completion.CompletionRatePercent = round2(float64(report.Completion.CompletedAppraisals) / float64(total) * 100)
	report.Completion.PendingAppraisals = report.Completion.TotalAppraisals - report.Completion.CompletedAppraisals

	return report, nil
}

// ContractExpiryAlerts lists contracts ending within the alert window.
func (s *Service) ContractExpiryAlerts(ctx context.Context, daysAhead int) (*analytics.ContractReport, error) {
	if daysAhead <= 0 {
		daysAhead = 30
	}
	today := truncateDay(s.now())
	alertDate := today.AddDate(0, 0, daysAhead)

	rows, err := s.db.QueryContext(ctx, `
	SELECT p.id, p.first_name, p.last_name, p.work_email,
	       COALESCE(p.manager_id::text, ''), COALESCE(c.contract_type, ''), c.end_date
	FROM employment_contract c
	JOIN people p ON p.id = c.person_id
	WHERE c.end_date IS NOT NULL AND c.end_date >= $1 AND c.end_date <= $2
	ORDER BY c.end_date`, today, alertDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring contracts: %w", err)
	}
	defer rows.Close()

	report := &analytics.ContractReport{
		AlertPeriodDays: daysAhead,
		LastUpdated:     s.now(),
	}
	for rows.Next() {
		var alert analytics.ContractAlert
		var first, last string
		if err := rows.Scan(&alert.PersonID, &first, &last, &alert.Email,
			&alert.ManagerID, &alert.ContractType, &alert.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan expiring contract: %w", err)
		}
		alert.Name = first + " " + last
		alert.DaysUntilExpiry = daysBetween(today, truncateDay(alert.EndDate))
		report.ExpiringContracts = append(report.ExpiringContracts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expiring contracts: %w", err)
	}

	report.TotalExpiring = len(report.ExpiringContracts)
	return report, nil
}

// DashboardSummary combines the individual reports into one overview with a
// three month attrition window.
func (s *Service) DashboardSummary(ctx context.Context) (*analytics.DashboardSummary, error) {
	headcount, err := s.CurrentHeadcount(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard headcount: %w", err)
	}
	trends, err := s.Trends(ctx, 3)
	if err != nil {
		return nil, fmt.Errorf("dashboard trends: %w", err)
	}
	attrition, err := s.Attrition(ctx, 3)
	if err != nil {
		return nil, fmt.Errorf("dashboard attrition: %w", err)
	}
	probation, err := s.ProbationAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard probation: %w", err)
	}
	appraisals, err := s.AppraisalStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard appraisals: %w", err)
	}
	contracts, err := s.ContractExpiryAlerts(ctx, 30)
	if err != nil {
		return nil, fmt.Errorf("dashboard contracts: %w", err)
	}

	return &analytics.DashboardSummary{
		TotalEmployees:      headcount.TotalHeadcount,
		AttritionRate:       attrition.AttritionRatePercent,
		AppraisalCompletion: appraisals.Completion.CompletionRatePercent,
		TotalAlerts:         probation.TotalAlerts + contracts.TotalExpiring,
		LastUpdated:         s.now(),
		Headcount:           headcount,
		Trends:              trends,
		Attrition:           attrition,
		Probation:           probation,
		Appraisals:          appraisals,
		Contracts:           contracts,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
