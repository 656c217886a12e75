package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/format"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

const recentExpenseCount = 5

// AnalyticsOption customizes an analytics service.
type AnalyticsOption func(*analyticsService)

// WithClock sets the source of the reference instant.
func WithClock(now Clock) AnalyticsOption {
	return func(s *analyticsService) { s.clock = now }
}

// WithLocation sets the time zone in which calendar months are read.
func WithLocation(loc *time.Location) AnalyticsOption {
	return func(s *analyticsService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithDashboardCache memoizes dashboards per user. A size of zero or less
// disables the cache.
func WithDashboardCache(size int, ttl time.Duration) AnalyticsOption {
	return func(s *analyticsService) {
		if size <= 0 {
			s.cache = nil
			return
		}
		s.cache = expirable.NewLRU[string, *Dashboard](size, nil, ttl)
	}
}

// analyticsService feeds stored expenses through the analytics package.
type analyticsService struct {
	expenses   ExpenseServicer
	categories CategoryServicer
	users      UserServicer
	clock      Clock
	location   *time.Location
	cache      *expirable.LRU[string, *Dashboard]
}

// NewAnalyticsService creates a new analytics service. Subscribe it to the
// ChangeNotifier so writes evict cached dashboards.
func NewAnalyticsService(expenses ExpenseServicer, categories CategoryServicer, users UserServicer, opts ...AnalyticsOption) AnalyticsServicer {
	s := &analyticsService{
		expenses:   expenses,
		categories: categories,
		users:      users,
		clock:      time.Now,
		location:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// userData is everything a user-level view is computed from.
type userData struct {
	user       *models.User
	expenses   []models.Expense
	categories []models.Category
}

func (s *analyticsService) load(userID string, filter ExpenseFilter) (*userData, error) {
	return loadUserData(s.users, s.expenses, s.categories, userID, filter)
}

// loadUserData fetches the user, the filtered expenses and the categories concurrently.
func loadUserData(users UserServicer, expenses ExpenseServicer, categories CategoryServicer, userID string, filter ExpenseFilter) (*userData, error) {
	data := &userData{}
	var g errgroup.Group

	g.Go(func() error {
		user, err := users.GetUserByID(userID)
		data.user = user
		return err
	})
	g.Go(func() error {
		list, err := expenses.GetUserExpenses(userID, filter)
		data.expenses = list
		return err
	})
	g.Go(func() error {
		list, err := categories.GetUserCategories(userID)
		data.categories = list
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *analyticsService) now() time.Time {
	return s.clock().In(s.location)
}

// GetDashboard returns the overview for the current month, from cache when possible.
func (s *analyticsService) GetDashboard(userID string) (*Dashboard, error) {
	now := s.now()
	if s.cache != nil {
		if cached, ok := s.cache.Get(userID); ok && cached.MonthOverMonth.Current == analytics.CurrentPeriod(now) {
			return cached, nil
		}
	}

	data, err := s.load(userID, ExpenseFilter{})
	if err != nil {
		return nil, err
	}

	lookup := analytics.NewCategoryLookup(data.categories)
	summary := lookup.Label(analytics.Summarize(data.expenses))

	dashboard := &Dashboard{
		Summary:        summary,
		Trends:         trendPoints(analytics.MonthlyTrends(data.expenses)),
		MonthOverMonth: analytics.CompareMonths(data.expenses, now),
		RecentExpenses: recent(data.expenses, recentExpenseCount),
		Categories:     data.categories,
		Currency:       data.user.Currency,
		GeneratedAt:    now,
	}
	if top, ok := summary.TopCategory(); ok {
		dashboard.TopCategory = &top
	}

	if s.cache != nil {
		s.cache.Add(userID, dashboard)
	}
	return dashboard, nil
}

// GetSummary returns the labelled category breakdown of the filtered expenses.
func (s *analyticsService) GetSummary(userID string, filter ExpenseFilter) (*analytics.Summary, error) {
	data, err := s.load(userID, filter)
	if err != nil {
		return nil, err
	}
	summary := analytics.NewCategoryLookup(data.categories).Label(analytics.Summarize(data.expenses))
	return &summary, nil
}

// GetTrends returns monthly totals of the filtered expenses with chart labels.
func (s *analyticsService) GetTrends(userID string, filter ExpenseFilter) ([]TrendPoint, error) {
	expenses, err := s.expenses.GetUserExpenses(userID, filter)
	if err != nil {
		return nil, err
	}
	return trendPoints(analytics.MonthlyTrends(expenses)), nil
}

// GetMonthOverMonth compares month, or the current month when nil, with the one before.
func (s *analyticsService) GetMonthOverMonth(userID string, month *analytics.Period) (*analytics.MonthOverMonth, error) {
	current := analytics.CurrentPeriod(s.now())
	if month != nil {
		current = *month
	}

	from := current.Previous().Start()
	to := current.End().AddDate(0, 0, -1)
	expenses, err := s.expenses.GetUserExpenses(userID, ExpenseFilter{FromDate: &from, ToDate: &to})
	if err != nil {
		return nil, err
	}

	result := analytics.CompareMonths(expenses, current.Start())
	return &result, nil
}

// OnChange evicts the dashboard of the user whose data changed.
func (s *analyticsService) OnChange(change Change) {
	if s.cache == nil {
		return
	}
	if s.cache.Remove(change.UserID) {
		logger.Get().Debugw("Evicted cached dashboard", "user_id", change.UserID, "resource", change.Resource)
	}
}

func trendPoints(trends []analytics.MonthlyTrend) []TrendPoint {
	points := make([]TrendPoint, 0, len(trends))
	for _, t := range trends {
		points = append(points, TrendPoint{
			Month:     t.Month,
			Label:     format.ShortMonth(t.Month),
			LongLabel: format.LongMonth(t.Month),
			Amount:    t.Amount,
		})
	}
	return points
}

// recent returns up to n expenses from a list already ordered newest first.
func recent(expenses []models.Expense, n int) []models.Expense {
	if len(expenses) < n {
		n = len(expenses)
	}
	out := make([]models.Expense, n)
	copy(out, expenses[:n])
	return out
}
