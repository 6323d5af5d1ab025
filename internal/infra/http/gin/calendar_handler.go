package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	calendarapp "staybook/internal/app/handlers/calendar"
	"staybook/internal/app/queries"
)

type CalendarHandler struct {
	Queries queries.Bus
}

func (h CalendarHandler) Summary(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		from, err = time.Parse("2006-01-02", c.Query("from"))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339 or YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		to, err = time.Parse("2006-01-02", c.Query("to"))
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339 or YYYY-MM-DD"})
		return
	}
	query := calendarapp.GetSummaryQuery{PropertyID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[calendarapp.GetSummaryQuery, dto.AvailabilitySummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Month(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be an integer"})
		return
	}
	query := calendarapp.GetMonthQuery{PropertyID: c.Param("id"), Year: year, Month: month}
	result, err := queries.Ask[calendarapp.GetMonthQuery, dto.MonthCalendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CalendarHandler) Blocked(c *gin.Context) {
	query := calendarapp.GetBlockedQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[calendarapp.GetBlockedQuery, dto.BlockedDates](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CalendarHTTP = CalendarHandler{}
