package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/money"
)

type totalsRequest struct {
	Items    []invoicedomain.LineItem `json:"items"`
	TaxRate  json.RawMessage          `json:"taxRate"`
	Shipping json.RawMessage          `json:"shipping"`
}

// PreviewTotals computes totals for an unsaved form.
func (s *Server) PreviewTotals(c *gin.Context) {
	var req totalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	totals := money.ComputeTotals(
		invoicedomain.MoneyItems(req.Items),
		money.ParseJSON(req.TaxRate),
		money.ParseJSON(req.Shipping),
	)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"totals":  totals,
		"display": totals.Display(),
	}})
}
