package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spendwise/internal/analytics"
	apperrors "spendwise/internal/errors"
	"spendwise/internal/services"
)

// AnalyticsHandler serves the dashboard and spending breakdowns.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboard returns the overview bundle
// @Summary     Dashboard
// @Description Summary, monthly trends, month-over-month comparison, top category and recent expenses
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.analyticsService.GetDashboard(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetSummary returns the category breakdown
// @Summary     Spending summary
// @Description Total, count, average and per-category breakdown of the filtered expenses, largest category first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from_date   query string   false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to_date     query string   false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       category_id query []string false "Category IDs" collectionFormat(multi)
// @Param       min_amount  query string   false "Minimum amount"
// @Param       max_amount  query string   false "Maximum amount"
// @Param       q           query string   false "Description search"
// @Success     200 {object} analytics.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.analyticsService.GetSummary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTrends returns monthly totals
// @Summary     Monthly trends
// @Description Spending per calendar month in ascending order, with chart labels
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from_date   query string   false "Earliest date, inclusive (YYYY-MM-DD)"
// @Param       to_date     query string   false "Latest date, inclusive (YYYY-MM-DD)"
// @Param       category_id query []string false "Category IDs" collectionFormat(multi)
// @Success     200 {array} services.TrendPoint "Monthly trends"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/trends [get]
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trends, err := h.analyticsService.GetTrends(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"monthly_trends": trends})
}

// MonthQuery is the optional reference month of month-over-month comparisons.
type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,month_key"`
}

// GetMonthOverMonth compares a month with the one before it
// @Summary     Month over month
// @Description Compare the totals of a month and its previous month. Defaults to the current month.
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Reference month (YYYY-MM)"
// @Success     200 {object} analytics.MonthOverMonth "Comparison"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/month-over-month [get]
func (h *AnalyticsHandler) GetMonthOverMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query MonthQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month, use YYYY-MM"))
		return
	}

	var month *analytics.Period
	if query.Month != "" {
		p, err := analytics.ParseMonthKey(query.Month)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month, use YYYY-MM"))
			return
		}
		month = &p
	}

	result, err := h.analyticsService.GetMonthOverMonth(userID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
