package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/gateway"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	obsmetrics "github.com/sahelpay/sahelpay/internal/observability/metrics"
	"github.com/sahelpay/sahelpay/internal/transaction/domain"
	"github.com/sahelpay/sahelpay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultFailureReason = "payment declined by operator"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	GenID       *snowflake.Node
	Repo        domain.Repository
	Gateways    *gateway.Registry
	MerchantSvc merchantdomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	genID       *snowflake.Node
	repo        domain.Repository
	gateways    *gateway.Registry
	merchantSvc merchantdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("transaction.service"),
		cfg:         p.Cfg,
		genID:       p.GenID,
		repo:        p.Repo,
		gateways:    p.Gateways,
		merchantSvc: p.MerchantSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Process(ctx context.Context, req domain.ProcessRequest) (domain.ProcessResponse, error) {
	if req.Amount <= 0 {
		return domain.ProcessResponse{}, domain.ErrInvalidAmount
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if !s.gateways.ProviderExists(provider) {
		return domain.ProcessResponse{}, domain.ErrInvalidProvider
	}
	phone := strings.TrimSpace(req.CustomerPhone)
	if phone == "" {
		return domain.ProcessResponse{}, domain.ErrMissingPhone
	}

	merchant, err := s.merchantSvc.Resolve(ctx, req.MerchantID)
	if err != nil {
		return domain.ProcessResponse{}, err
	}

	gw, err := s.gateways.Get(provider)
	if err != nil {
		return domain.ProcessResponse{}, domain.ErrInvalidProvider
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "mobile payment"
	}

	transactionID := domain.NewTransactionID()
	result, err := gw.Charge(ctx, gatewaydomain.ChargeRequest{
		Config:        s.merchantSvc.ProviderConfig(merchant, provider),
		Amount:        req.Amount,
		Currency:      s.cfg.DefaultCurrency,
		CustomerPhone: phone,
		CustomerEmail: customerEmail(req.CustomerEmail, phone),
		CustomerName:  customerName(req.CustomerName),
		Description:   description,
		TransactionID: transactionID,
	})
	if err != nil {
		return domain.ProcessResponse{}, err
	}

	record, err := s.persistAttempt(ctx, merchant, provider, transactionID, req, description, result, nil)
	if err != nil {
		return domain.ProcessResponse{}, err
	}

	return domain.ProcessResponse{
		Transaction: record,
		Success:     record.Status == domain.StatusCompleted,
	}, nil
}

// CreateFromResult persists a gateway outcome on behalf of the aggregation
// engine, which has already charged the provider. Metadata carries the
// aggregation back-reference.
func (s *Service) CreateFromResult(
	ctx context.Context,
	merchant *merchantdomain.Merchant,
	provider string,
	transactionID string,
	req domain.ProcessRequest,
	description string,
	result *gatewaydomain.ChargeResult,
	metadata datatypes.JSONMap,
) (*domain.Transaction, error) {
	return s.persistAttempt(ctx, merchant, provider, transactionID, req, description, result, metadata)
}

func (s *Service) persistAttempt(
	ctx context.Context,
	merchant *merchantdomain.Merchant,
	provider string,
	transactionID string,
	req domain.ProcessRequest,
	description string,
	result *gatewaydomain.ChargeResult,
	metadata datatypes.JSONMap,
) (*domain.Transaction, error) {
	now := time.Now().UTC()
	phone := strings.TrimSpace(req.CustomerPhone)

	record := &domain.Transaction{
		ID:                    s.genID.Generate(),
		TransactionID:         transactionID,
		MerchantID:            merchant.ID,
		Provider:              provider,
		ProviderTransactionID: result.ProviderTransactionID,
		Amount:                req.Amount,
		Currency:              s.cfg.DefaultCurrency,
		Status:                result.Status,
		Customer: domain.Customer{
			Phone: phone,
			Email: customerEmail(req.CustomerEmail, phone),
			Name:  customerName(req.CustomerName),
		},
		Description:    description,
		Metadata:       metadata,
		ProviderFee:    result.Commission.ProviderFee,
		PlatformFee:    result.Commission.PlatformFee,
		TotalFee:       result.Commission.TotalFee,
		NetAmount:      req.Amount - result.Commission.TotalFee,
		PaymentMethod:  result.PaymentMethod,
		PaymentDetails: datatypes.JSONMap(result.PaymentDetails),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	switch result.Status {
	case domain.StatusCompleted:
		record.CompletedAt = &now
	case domain.StatusFailed:
		record.FailedAt = &now
		record.FailureReason = result.FailureReason
		if record.FailureReason == "" {
			record.FailureReason = defaultFailureReason
		}
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}

	if result.Status == domain.StatusCompleted {
		if err := s.merchantSvc.RecordSale(ctx, merchant.ID, record.NetAmount); err != nil {
			s.log.Warn("failed to update merchant counters",
				zap.String("transaction_id", transactionID),
				zap.Error(err),
			)
		}
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPayment(provider, string(result.Status))
	}

	return record, nil
}

func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.Transaction, error) {
	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		return nil, domain.ErrInvalidID
	}

	record, err := s.repo.FindByTransactionID(ctx, s.db, transactionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	switch record.Status {
	case domain.StatusRefunded:
		return nil, domain.ErrAlreadyRefunded
	case domain.StatusCompleted:
	default:
		return nil, domain.ErrNotCompleted
	}

	amount := req.Amount
	if amount == 0 {
		amount = record.Amount
	}
	if amount < 0 || amount > record.Amount {
		return nil, domain.ErrInvalidRefund
	}

	gw, err := s.gateways.Get(record.Provider)
	if err != nil {
		return nil, err
	}

	result, err := gw.Refund(ctx, gatewaydomain.RefundRequest{
		ProviderTransactionID: record.ProviderTransactionID,
		Amount:                amount,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkRefunded(ctx, s.db, record.ID, result.RefundID, amount, strings.TrimSpace(req.Reason), now); err != nil {
		return nil, err
	}

	if err := s.merchantSvc.RecordRefund(ctx, record.MerchantID, record.NetAmount); err != nil {
		s.log.Warn("failed to reverse merchant revenue",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordRefund(record.Provider)
	}

	updated, err := s.repo.FindByTransactionID(ctx, s.db, transactionID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) HandleWebhook(ctx context.Context, provider string, payload []byte, headers map[string][]string) (*domain.WebhookResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	gw, err := s.gateways.Get(provider)
	if err != nil {
		return nil, err
	}

	event, err := gw.ParseWebhook(payload, http.Header(headers))
	if err != nil {
		return nil, err
	}

	record, err := s.repo.FindByProviderTransactionID(ctx, s.db, provider, event.ProviderTransactionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	// A record already finalized synchronously keeps its state; webhook
	// redelivery is not an error.
	if !record.Status.Terminal() {
		now := time.Now().UTC()
		if err := s.repo.UpdateStatus(ctx, s.db, record.ID, event.Status, event.FailureReason, now); err != nil {
			return nil, err
		}
		if event.Status == domain.StatusCompleted {
			if err := s.merchantSvc.RecordSale(ctx, record.MerchantID, record.NetAmount); err != nil {
				s.log.Warn("failed to update merchant counters",
					zap.String("transaction_id", record.TransactionID),
					zap.Error(err),
				)
			}
		}
		record.Status = event.Status
	}

	return &domain.WebhookResult{
		TransactionID: record.TransactionID,
		Status:        record.Status,
		FailureReason: event.FailureReason,
	}, nil
}

func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, domain.ErrInvalidID
	}

	record, err := s.repo.FindByTransactionID(ctx, s.db, transactionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		Provider: strings.ToLower(strings.TrimSpace(req.Provider)),
		Status:   domain.Status(strings.ToLower(strings.TrimSpace(req.Status))),
	}
	if merchantID := strings.TrimSpace(req.MerchantID); merchantID != "" {
		id, err := snowflake.ParseString(merchantID)
		if err != nil || id == 0 {
			return domain.ListResponse{}, domain.ErrInvalidMerchant
		}
		filter.MerchantID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(tx *domain.Transaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tx.ID.String(),
			CreatedAt: tx.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	transactions := make([]domain.Transaction, 0, len(items))
	for _, item := range items {
		transactions = append(transactions, *item)
	}

	return domain.ListResponse{
		PageInfo:     *pageInfo,
		Transactions: transactions,
	}, nil
}

func customerEmail(email, phone string) string {
	email = strings.TrimSpace(email)
	if email != "" {
		return email
	}
	return phone + "@mobile.bf"
}

func customerName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	return "Customer"
}
