package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/analytics"
	"spendwise/internal/format"
	"spendwise/internal/logger"
	"spendwise/internal/models"
)

const digestConcurrency = 4

// DigestPublisher delivers finished digests.
type DigestPublisher interface {
	PublishDigest(ctx context.Context, digest *DigestResult) error
}

// digestService compiles the monthly spending digest for every active user.
type digestService struct {
	users      UserServicer
	expenses   ExpenseServicer
	categories CategoryServicer
	publisher  DigestPublisher
	clock      Clock
	location   *time.Location
}

// NewDigestService creates a new DigestServicer.
func NewDigestService(users UserServicer, expenses ExpenseServicer, categories CategoryServicer, publisher DigestPublisher, now Clock, loc *time.Location) DigestServicer {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &digestService{
		users:      users,
		expenses:   expenses,
		categories: categories,
		publisher:  publisher,
		clock:      now,
		location:   loc,
	}
}

// BuildDigest compares month with the one before it for a single user.
// It returns nil when the user recorded nothing in month.
func (s *digestService) BuildDigest(user *models.User, month analytics.Period) (*DigestResult, error) {
	from := month.Previous().Start()
	to := month.End().AddDate(0, 0, -1)
	expenses, err := s.expenses.GetUserExpenses(user.ID, ExpenseFilter{FromDate: &from, ToDate: &to})
	if err != nil {
		return nil, err
	}

	mom := analytics.CompareMonths(expenses, month.Start())
	if len(mom.CurrentExpenses) == 0 {
		return nil, nil
	}

	categories, err := s.categories.GetUserCategories(user.ID)
	if err != nil {
		return nil, err
	}
	summary := analytics.NewCategoryLookup(categories).Label(analytics.Summarize(mom.CurrentExpenses))

	digest := &DigestResult{
		UserID: user.ID,
		Email:  user.Email,
		Month:  month,
		Total:  mom.CurrentTotal,
		Delta:  mom.Delta,
	}
	if top, ok := summary.TopCategory(); ok {
		digest.TopCategory = &top
	}
	digest.Text = digestText(digest, mom, user.Currency)
	return digest, nil
}

// RunMonthlyDigest publishes a digest of the month that just closed for every
// active user who spent something in it. A failure for one user does not stop
// the others.
func (s *digestService) RunMonthlyDigest(ctx context.Context) (*DigestRun, error) {
	log := logger.Get()
	month := analytics.CurrentPeriod(s.clock().In(s.location)).Previous()

	users, err := s.users.GetActiveUsers()
	if err != nil {
		return nil, err
	}

	var published, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)

	for i := range users {
		user := &users[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			digest, err := s.BuildDigest(user, month)
			if err != nil {
				failed.Add(1)
				log.Errorw("Failed to build digest", "user_id", user.ID, "month", month.Key(), "error", err)
				return nil
			}
			if digest == nil {
				return nil
			}
			if err := s.publisher.PublishDigest(ctx, digest); err != nil {
				failed.Add(1)
				log.Errorw("Failed to publish digest", "user_id", user.ID, "month", month.Key(), "error", err)
				return nil
			}
			published.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &DigestRun{
		Month:     month,
		Users:     len(users),
		Published: int(published.Load()),
		Failed:    int(failed.Load()),
	}
	log.Infow("Monthly digest finished",
		"month", month.Key(), "users", run.Users, "published", run.Published, "failed", run.Failed)
	return run, nil
}

func digestText(d *DigestResult, mom analytics.MonthOverMonth, currency string) string {
	text := fmt.Sprintf("%s: you spent %s", format.LongMonth(d.Month.Key()), format.Money(d.Total, currency))

	if !mom.PreviousTotal.IsZero() {
		direction := "less"
		if d.Delta.Increased {
			direction = "more"
		}
		text += fmt.Sprintf(", %s %s than %s", format.Percent(d.Delta.Percentage), direction, format.LongMonth(mom.Previous.Key()))
	}
	text += "."

	if d.TopCategory != nil {
		text += fmt.Sprintf(" Top category: %s (%s).", d.TopCategory.Name, format.Percent(d.TopCategory.Percentage))
	}
	return text
}
