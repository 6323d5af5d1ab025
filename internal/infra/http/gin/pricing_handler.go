package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/queries"
)

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
	checkIn, err := time.Parse("2006-01-02", c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse("2006-01-02", c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be YYYY-MM-DD"})
		return
	}
	query := pricingapp.GetQuoteQuery{PropertyID: c.Param("id"), CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type priceSpanRequest struct {
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
	Amount int64     `json:"amount" binding:"required"`
}

type updatePricingRequest struct {
	Spans []priceSpanRequest `json:"spans" binding:"required,dive"`
}

func (h PricingHandler) Update(c *gin.Context) {
	var req updatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := pricingapp.UpdatePricingCommand{
		PropertyID:      c.Param("id"),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	for _, span := range req.Spans {
		cmd.Spans = append(cmd.Spans, pricingapp.PriceSpanInput{Start: span.Start, End: span.End, Amount: span.Amount})
	}
	result, err := commands.Dispatch[pricingapp.UpdatePricingCommand, *pricingapp.UpdatePricingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
