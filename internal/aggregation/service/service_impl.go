package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sahelpay/sahelpay/internal/aggregation/domain"
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/gateway"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	obsmetrics "github.com/sahelpay/sahelpay/internal/observability/metrics"
	txdomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	GenID       *snowflake.Node
	Repo        domain.Repository
	TxRepo      txdomain.Repository
	TxRecorder  domain.TransactionRecorder
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
	txRepo      txdomain.Repository
	txRecorder  domain.TransactionRecorder
	gateways    *gateway.Registry
	merchantSvc merchantdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("aggregation.service"),
		cfg:         p.Cfg,
		genID:       p.GenID,
		repo:        p.Repo,
		txRepo:      p.TxRepo,
		txRecorder:  p.TxRecorder,
		gateways:    p.Gateways,
		merchantSvc: p.MerchantSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

// journal appends entries to one aggregation's activity log, keeping insertion
// order through a per-batch sequence number. A failed write is reported but
// never interrupts processing.
type journal struct {
	svc *Service
	agg *domain.Aggregation
	seq int
}

func (j *journal) append(ctx context.Context, action, details, status string) {
	entry := &domain.ActivityLog{
		ID:            j.svc.genID.Generate(),
		AggregationID: j.agg.ID,
		Seq:           j.seq,
		Timestamp:     time.Now().UTC(),
		Action:        action,
		Details:       details,
		Status:        status,
	}
	j.seq++

	if err := j.svc.repo.AppendLog(ctx, j.svc.db, entry); err != nil {
		j.svc.log.Warn("failed to append activity log",
			zap.String("aggregation_id", j.agg.AggregationID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.CreateResponse, error) {
	items, totalAmount, err := s.validate(&req)
	if err != nil {
		return domain.CreateResponse{}, err
	}

	now := time.Now().UTC()
	phone := strings.TrimSpace(req.CustomerPhone)
	email := customerEmail(req.CustomerEmail, phone)
	name := customerName(req.CustomerName)

	paymentsJSON, err := json.Marshal(items)
	if err != nil {
		return domain.CreateResponse{}, err
	}

	agg := &domain.Aggregation{
		ID:            s.genID.Generate(),
		AggregationID: domain.NewAggregationID(),
		Customer: domain.Customer{
			Phone: phone,
			Email: email,
			Name:  name,
		},
		Payments:    paymentsJSON,
		TotalAmount: totalAmount,
		Provider:    req.Provider,
		Status:      domain.StatusPending,
		Metadata:    requestMetadata(req),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, agg); err != nil {
		return domain.CreateResponse{}, err
	}

	j := &journal{svc: s, agg: agg}
	j.append(ctx, domain.ActionCreation,
		fmt.Sprintf("aggregation created with %d payment(s) totaling %d %s", len(items), totalAmount, s.cfg.DefaultCurrency),
		domain.LogSuccess,
	)

	merchant, err := s.merchantSvc.Resolve(ctx, req.MerchantID)
	if err != nil {
		// The parent record survives in its pre-processing state so the
		// failed attempt stays auditable.
		j.append(ctx, domain.ActionError, "no merchant available", domain.LogError)
		return domain.CreateResponse{}, err
	}
	j.append(ctx, domain.ActionMerchantSelected,
		fmt.Sprintf("merchant: %s", merchant.BusinessName),
		domain.LogSuccess,
	)

	agg.MerchantID = merchant.ID
	agg.Status = domain.StatusProcessing
	agg.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, agg); err != nil {
		return domain.CreateResponse{}, err
	}
	j.append(ctx, domain.ActionProcessing, "starting payment processing", domain.LogInfo)

	gw, err := s.gateways.Get(req.Provider)
	if err != nil {
		return domain.CreateResponse{}, err
	}
	providerConfig := s.merchantSvc.ProviderConfig(merchant, req.Provider)

	// Sub-payments run strictly in submission order, one at a time, so the
	// activity log reads as a faithful narrative of the batch.
	var (
		transactionIDs []string
		transactions   []txdomain.Transaction
		successCount   int
		failureCount   int
	)
	for i, item := range items {
		j.append(ctx, domain.ActionPaymentStart,
			fmt.Sprintf("processing payment %d/%d: %s - %d %s", i+1, len(items), item.Description, item.Amount, s.cfg.DefaultCurrency),
			domain.LogInfo,
		)

		transactionID := txdomain.NewTransactionID()
		description := fmt.Sprintf("%s (aggregation %s)", item.Description, agg.AggregationID)

		result, err := gw.Charge(ctx, chargeRequest(providerConfig, item, agg, transactionID, description, s.cfg.DefaultCurrency))
		if err != nil {
			// A processing error produces no transaction record but still
			// counts as a failure; the batch carries on.
			failureCount++
			j.append(ctx, domain.ActionPaymentError,
				fmt.Sprintf("payment %d error: %v", i+1, err),
				domain.LogError,
			)
			continue
		}

		record, err := s.txRecorder.CreateFromResult(ctx, merchant, req.Provider, transactionID, txdomain.ProcessRequest{
			Provider:      req.Provider,
			Amount:        item.Amount,
			CustomerPhone: phone,
			CustomerEmail: email,
			CustomerName:  name,
		}, description, result, datatypes.JSONMap{
			txdomain.MetadataKeyAggregationID: agg.AggregationID,
			txdomain.MetadataKeyPaymentIndex:  i,
			txdomain.MetadataKeyCategory:      item.Category,
			txdomain.MetadataKeyReference:     item.Reference,
		})
		if err != nil {
			failureCount++
			j.append(ctx, domain.ActionPaymentError,
				fmt.Sprintf("payment %d error: %v", i+1, err),
				domain.LogError,
			)
			continue
		}

		transactionIDs = append(transactionIDs, record.TransactionID)
		transactions = append(transactions, *record)

		if record.Status == txdomain.StatusCompleted {
			successCount++
			j.append(ctx, domain.ActionPaymentSuccess,
				fmt.Sprintf("payment %d/%d completed: %s - ref %s", i+1, len(items), item.Description, record.ProviderTransactionID),
				domain.LogSuccess,
			)
		} else {
			failureCount++
			j.append(ctx, domain.ActionPaymentFailed,
				fmt.Sprintf("payment %d/%d declined: %s", i+1, len(items), item.Description),
				domain.LogError,
			)
		}
	}

	idsJSON, err := json.Marshal(transactionIDs)
	if err != nil {
		return domain.CreateResponse{}, err
	}
	agg.TransactionIDs = idsJSON

	end := time.Now().UTC()
	switch {
	case failureCount == 0:
		agg.Status = domain.StatusCompleted
		agg.CompletedAt = &end
		j.append(ctx, domain.ActionCompleted,
			fmt.Sprintf("all payments succeeded (%d/%d)", successCount, len(items)),
			domain.LogSuccess,
		)
	case successCount == 0:
		agg.Status = domain.StatusFailed
		agg.FailedAt = &end
		j.append(ctx, domain.ActionFailed,
			fmt.Sprintf("all payments failed (0/%d)", len(items)),
			domain.LogError,
		)
	default:
		// Partial batches keep both terminal timestamps empty; the PARTIAL
		// log entry carries the end time.
		agg.Status = domain.StatusPartial
		j.append(ctx, domain.ActionPartial,
			fmt.Sprintf("partial settlement: %d succeeded, %d failed", successCount, failureCount),
			domain.LogWarning,
		)
	}
	agg.UpdatedAt = end
	if err := s.repo.Update(ctx, s.db, agg); err != nil {
		return domain.CreateResponse{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordAggregation(string(agg.Status))
	}

	logs, err := s.repo.Logs(ctx, s.db, agg.ID)
	if err != nil {
		return domain.CreateResponse{}, err
	}

	return domain.CreateResponse{
		Aggregation:  agg,
		Transactions: transactions,
		Logs:         logs,
		Summary: domain.Summary{
			Total:       len(items),
			Success:     successCount,
			Failed:      failureCount,
			TotalAmount: totalAmount,
			Status:      agg.Status,
		},
		Success: agg.Status == domain.StatusCompleted,
		Message: statusMessage(agg.Status),
	}, nil
}

func (s *Service) Get(ctx context.Context, ref string) (domain.GetResponse, error) {
	agg, err := s.findByRef(ctx, ref)
	if err != nil {
		return domain.GetResponse{}, err
	}

	transactions, err := s.loadTransactions(ctx, agg)
	if err != nil {
		return domain.GetResponse{}, err
	}

	logs, err := s.repo.Logs(ctx, s.db, agg.ID)
	if err != nil {
		return domain.GetResponse{}, err
	}

	return domain.GetResponse{
		Aggregation:  agg,
		Transactions: transactions,
		Logs:         logs,
	}, nil
}

func (s *Service) Logs(ctx context.Context, ref string) (domain.LogsResponse, error) {
	agg, err := s.findByRef(ctx, ref)
	if err != nil {
		return domain.LogsResponse{}, err
	}

	logs, err := s.repo.Logs(ctx, s.db, agg.ID)
	if err != nil {
		return domain.LogsResponse{}, err
	}

	return domain.LogsResponse{
		AggregationID: agg.AggregationID,
		Status:        agg.Status,
		Logs:          logs,
	}, nil
}

func (s *Service) ListByPhone(ctx context.Context, phone string) ([]domain.Aggregation, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, domain.ErrMissingPhone
	}

	items, err := s.repo.ListByPhone(ctx, s.db, phone)
	if err != nil {
		return nil, err
	}

	aggs := make([]domain.Aggregation, 0, len(items))
	for _, item := range items {
		aggs = append(aggs, *item)
	}
	return aggs, nil
}

// validate rejects the request before anything is persisted. It normalizes
// the provider and per-item categories in place.
func (s *Service) validate(req *domain.CreateRequest) ([]domain.PaymentItem, int64, error) {
	if len(req.Payments) == 0 {
		return nil, 0, domain.ErrNoPayments
	}

	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	if !s.gateways.ProviderExists(req.Provider) {
		return nil, 0, domain.ErrInvalidProvider
	}

	if strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, 0, domain.ErrMissingPhone
	}

	items := make([]domain.PaymentItem, 0, len(req.Payments))
	var total int64
	for _, item := range req.Payments {
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" || item.Amount <= 0 {
			return nil, 0, domain.ErrInvalidPayment
		}
		item.Category = strings.ToLower(strings.TrimSpace(item.Category))
		if item.Category == "" {
			item.Category = domain.CategoryOther
		}
		if !domain.ValidCategory(item.Category) {
			return nil, 0, domain.ErrInvalidCategory
		}
		total += item.Amount
		items = append(items, item)
	}

	return items, total, nil
}

func (s *Service) findByRef(ctx context.Context, ref string) (*domain.Aggregation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrMissingRef
	}

	agg, err := s.repo.FindByRef(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, domain.ErrNotFound
	}
	return agg, nil
}

func (s *Service) loadTransactions(ctx context.Context, agg *domain.Aggregation) ([]txdomain.Transaction, error) {
	if len(agg.TransactionIDs) == 0 {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal(agg.TransactionIDs, &ids); err != nil {
		return nil, err
	}

	transactions := make([]txdomain.Transaction, 0, len(ids))
	for _, id := range ids {
		record, err := s.txRepo.FindByTransactionID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		transactions = append(transactions, *record)
	}
	return transactions, nil
}

func chargeRequest(
	cfg gatewaydomain.Config,
	item domain.PaymentItem,
	agg *domain.Aggregation,
	transactionID, description, currency string,
) gatewaydomain.ChargeRequest {
	return gatewaydomain.ChargeRequest{
		Config:        cfg,
		Amount:        item.Amount,
		Currency:      currency,
		CustomerPhone: agg.Customer.Phone,
		CustomerEmail: agg.Customer.Email,
		CustomerName:  agg.Customer.Name,
		Description:   description,
		TransactionID: transactionID,
	}
}

func requestMetadata(req domain.CreateRequest) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	if req.ClientIP != "" {
		meta["ip_address"] = req.ClientIP
	}
	if req.UserAgent != "" {
		meta["user_agent"] = req.UserAgent
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func statusMessage(status domain.Status) string {
	switch status {
	case domain.StatusCompleted:
		return "payment aggregation completed"
	case domain.StatusPartial:
		return "payment aggregation partially completed"
	default:
		return "payment aggregation failed"
	}
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
