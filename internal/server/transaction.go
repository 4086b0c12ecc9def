package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"github.com/sahelpay/sahelpay/pkg/db/pagination"
)

func (s *Server) GetTransaction(c *gin.Context) {
	resp, err := s.transactionSvc.GetByTransactionID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundTransactionRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) RefundTransaction(c *gin.Context) {
	var req refundTransactionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.transactionSvc.Refund(c.Request.Context(), transactiondomain.RefundRequest{
		TransactionID: c.Param("id"),
		Amount:        req.Amount,
		Reason:        strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		MerchantID string `form:"merchant_id"`
		Provider   string `form:"provider"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.List(c.Request.Context(), transactiondomain.ListRequest{
		Pagination: query.Pagination,
		MerchantID: strings.TrimSpace(query.MerchantID),
		Provider:   query.Provider,
		Status:     query.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
