package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/config"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	"github.com/sahelpay/sahelpay/internal/merchant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   config.Config
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("merchant.service"),
		cfg:   p.Cfg,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMerchantRequest) (domain.Merchant, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return domain.Merchant{}, domain.ErrInvalidBusinessName
	}

	businessType := strings.TrimSpace(req.BusinessType)
	if businessType == "" {
		businessType = domain.BusinessTypeIndividual
	}
	switch businessType {
	case domain.BusinessTypeIndividual, domain.BusinessTypeCompany, domain.BusinessTypeAssociation:
	default:
		return domain.Merchant{}, domain.ErrInvalidBusinessType
	}

	providers := datatypes.JSONMap{}
	for provider, cfg := range req.Providers {
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider == "" {
			continue
		}
		providers[provider] = map[string]any{
			"api_key":    cfg.APIKey,
			"secret_key": cfg.SecretKey,
			"priority":   cfg.Priority,
			"enabled":    cfg.Enabled,
		}
	}

	now := time.Now().UTC()
	merchant := domain.Merchant{
		ID:           s.genID.Generate(),
		BusinessName: name,
		BusinessType: businessType,
		Description:  strings.TrimSpace(req.Description),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		IsActive:     req.IsActive,
		IsVerified:   req.IsVerified,
		Providers:    providers,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &merchant); err != nil {
		return domain.Merchant{}, err
	}

	return merchant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Merchant, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Merchant{}, err
	}

	merchant, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Merchant{}, err
	}
	if merchant == nil {
		return domain.Merchant{}, domain.ErrNotFound
	}
	return *merchant, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Merchant, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	merchants := make([]domain.Merchant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		merchants = append(merchants, *item)
	}
	return merchants, nil
}

func (s *Service) Resolve(ctx context.Context, id string) (*domain.Merchant, error) {
	if strings.TrimSpace(id) != "" {
		parsed, err := s.parseID(id)
		if err != nil {
			return nil, err
		}
		merchant, err := s.repo.FindByID(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
		if merchant == nil || !merchant.IsActive {
			return nil, domain.ErrNoMerchantAvailable
		}
		if s.cfg.IsProduction() && !merchant.IsVerified {
			return nil, domain.ErrNoMerchantAvailable
		}
		return merchant, nil
	}

	// Placeholder routing rule: first eligible merchant wins. Outside
	// production, unverified merchants are accepted.
	merchant, err := s.repo.FindFirstEligible(ctx, s.db, s.cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, domain.ErrNoMerchantAvailable
	}
	return merchant, nil
}

func (s *Service) ProviderConfig(merchant *domain.Merchant, provider string) gatewaydomain.Config {
	if merchant == nil {
		return gatewaydomain.DefaultConfig()
	}

	provider = strings.ToLower(strings.TrimSpace(provider))
	raw, ok := merchant.Providers[provider]
	if !ok {
		return gatewaydomain.DefaultConfig()
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return gatewaydomain.DefaultConfig()
	}
	var cfg gatewaydomain.Config
	if err := json.Unmarshal(encoded, &cfg); err != nil {
		return gatewaydomain.DefaultConfig()
	}
	if !cfg.Enabled {
		return gatewaydomain.DefaultConfig()
	}
	return cfg
}

func (s *Service) RecordSale(ctx context.Context, id snowflake.ID, netAmount int64) error {
	return s.repo.IncrementCounters(ctx, s.db, id, netAmount)
}

func (s *Service) RecordRefund(ctx context.Context, id snowflake.ID, netAmount int64) error {
	return s.repo.DecrementRevenue(ctx, s.db, id, netAmount)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
