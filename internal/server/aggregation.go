package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	aggregationdomain "github.com/sahelpay/sahelpay/internal/aggregation/domain"
)

type aggregationPaymentItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Category    string `json:"category"`
}

type createAggregationRequest struct {
	Payments      []aggregationPaymentItem `json:"payments"`
	Provider      string                   `json:"provider"`
	CustomerPhone string                   `json:"customer_phone"`
	CustomerEmail string                   `json:"customer_email"`
	CustomerName  string                   `json:"customer_name"`
	MerchantID    string                   `json:"merchant_id"`
}

func (s *Server) CreateAggregation(c *gin.Context) {
	var req createAggregationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]aggregationdomain.PaymentItem, 0, len(req.Payments))
	for _, item := range req.Payments {
		items = append(items, aggregationdomain.PaymentItem{
			Description: item.Description,
			Amount:      item.Amount,
			Reference:   strings.TrimSpace(item.Reference),
			Category:    item.Category,
		})
	}

	resp, err := s.aggregationSvc.Create(c.Request.Context(), aggregationdomain.CreateRequest{
		Payments:      items,
		Provider:      req.Provider,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		MerchantID:    strings.TrimSpace(req.MerchantID),
		ClientIP:      c.ClientIP(),
		UserAgent:     c.GetHeader("User-Agent"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Envelope success reflects only a fully completed batch; partial and
	// failed batches are reported on a successful call.
	c.JSON(http.StatusCreated, gin.H{
		"success": resp.Success,
		"message": resp.Message,
		"data": gin.H{
			"aggregation":  resp.Aggregation,
			"transactions": resp.Transactions,
			"logs":         resp.Logs,
			"summary":      resp.Summary,
		},
	})
}

func (s *Server) GetAggregation(c *gin.Context) {
	resp, err := s.aggregationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAggregationLogs(c *gin.Context) {
	resp, err := s.aggregationSvc.Logs(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAggregations(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))

	resp, err := s.aggregationSvc.ListByPhone(c.Request.Context(), phone)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(resp),
		"data":  gin.H{"aggregations": resp},
	})
}
