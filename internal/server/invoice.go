package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/money"
	"github.com/smallbiznis/invoicekit/pkg/db/pagination"
)

// saveInvoiceRequest accepts the tax rate and shipping as numbers,
// numeric strings or empty strings.
type saveInvoiceRequest struct {
	invoicedomain.SaveInvoiceRequest
	TaxRate  json.RawMessage `json:"taxRate"`
	Shipping json.RawMessage `json:"shipping"`
}

func (r saveInvoiceRequest) toDomain() invoicedomain.SaveInvoiceRequest {
	req := r.SaveInvoiceRequest
	req.TaxRate = money.ParseJSON(r.TaxRate)
	req.Shipping = money.ParseJSON(r.Shipping)
	return req
}

type listInvoiceQuery struct {
	pagination.Pagination
	Status string `form:"status"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoiceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status, err := parseOptionalStatus(query.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Status:    status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Invoices,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) SaveInvoice(c *gin.Context) {
	var body saveInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := body.toDomain()
	inv, err := s.invoiceSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": inv})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) NextInvoiceNumber(c *gin.Context) {
	number, err := s.invoiceSvc.NextNumber(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"invoiceNumber": number}})
}

func (s *Server) NewInvoiceDraft(c *gin.Context) {
	draft, err := s.invoiceSvc.NewDraft(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) CloneInvoice(c *gin.Context) {
	draft, err := s.invoiceSvc.Clone(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (s *Server) InvoiceLayout(c *gin.Context) {
	pages, err := s.renderer.Layout(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"pages": pages}})
}

func (s *Server) InvoicePDF(c *gin.Context) {
	doc, err := s.renderer.PDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", attachment(doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}

func (s *Server) InvoiceHistoryPDF(c *gin.Context) {
	doc, err := s.renderer.History(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", attachment(doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Content)
}
