package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

type processPaymentRequest struct {
	Provider      string `json:"provider"`
	Amount        int64  `json:"amount"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	Description   string `json:"description"`
	MerchantID    string `json:"merchant_id"`
}

func (s *Server) ProcessPayment(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transactionSvc.Process(c.Request.Context(), transactiondomain.ProcessRequest{
		Provider:      req.Provider,
		Amount:        req.Amount,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Description:   req.Description,
		MerchantID:    strings.TrimSpace(req.MerchantID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": resp.Success,
		"data":    gin.H{"transaction": resp.Transaction},
	})
}

func (s *Server) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.transactionSvc.HandleWebhook(c.Request.Context(), c.Param("provider"), payload, c.Request.Header)
	if err != nil {
		// Unrecognized event shapes are acknowledged so the provider stops
		// redelivering them.
		if errors.Is(err, gatewaydomain.ErrEventIgnored) {
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"ignored": true}})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
