package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
)

type merchantProviderConfig struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
	Priority  int    `json:"priority"`
	Enabled   bool   `json:"enabled"`
}

type createMerchantRequest struct {
	BusinessName string                            `json:"business_name"`
	BusinessType string                            `json:"business_type"`
	Description  string                            `json:"description"`
	ContactEmail string                            `json:"contact_email"`
	IsActive     *bool                             `json:"is_active"`
	IsVerified   bool                              `json:"is_verified"`
	Providers    map[string]merchantProviderConfig `json:"providers"`
}

func (s *Server) CreateMerchant(c *gin.Context) {
	var req createMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	providers := make(map[string]gatewaydomain.Config, len(req.Providers))
	for provider, cfg := range req.Providers {
		providers[provider] = gatewaydomain.Config{
			APIKey:    cfg.APIKey,
			SecretKey: cfg.SecretKey,
			Priority:  cfg.Priority,
			Enabled:   cfg.Enabled,
		}
	}

	// New merchants are active unless explicitly disabled.
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	resp, err := s.merchantSvc.Create(c.Request.Context(), merchantdomain.CreateMerchantRequest{
		BusinessName: strings.TrimSpace(req.BusinessName),
		BusinessType: strings.TrimSpace(req.BusinessType),
		Description:  req.Description,
		ContactEmail: req.ContactEmail,
		IsActive:     isActive,
		IsVerified:   req.IsVerified,
		Providers:    providers,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetMerchant(c *gin.Context) {
	resp, err := s.merchantSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMerchants(c *gin.Context) {
	resp, err := s.merchantSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"merchants": resp}})
}
