package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/gateway"
	gatewaydomain "github.com/sahelpay/sahelpay/internal/gateway/domain"
	"github.com/sahelpay/sahelpay/internal/gateway/mtn"
	"github.com/sahelpay/sahelpay/internal/gateway/orange"
	"github.com/sahelpay/sahelpay/internal/gateway/wave"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	merchantrepo "github.com/sahelpay/sahelpay/internal/merchant/repository"
	merchantservice "github.com/sahelpay/sahelpay/internal/merchant/service"
	"github.com/sahelpay/sahelpay/internal/transaction/domain"
	transactionrepo "github.com/sahelpay/sahelpay/internal/transaction/repository"
	transactionservice "github.com/sahelpay/sahelpay/internal/transaction/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	node        *snowflake.Node
	merchantSvc merchantdomain.Service
	merchant    merchantdomain.Merchant
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(&merchantdomain.Merchant{}, &domain.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func newFixture(t *testing.T, node int64) *fixture {
	t.Helper()

	db := setupTestDB(t)

	genID, err := snowflake.NewNode(node)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	cfg := config.Config{Environment: "test", DefaultCurrency: "XOF"}
	merchantSvc := merchantservice.New(merchantservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   cfg,
		GenID: genID,
		Repo:  merchantrepo.Provide(),
	})

	merchant, err := merchantSvc.Create(context.Background(), merchantdomain.CreateMerchantRequest{
		BusinessName: "Boutique Sankara",
		BusinessType: merchantdomain.BusinessTypeCompany,
		IsActive:     true,
		IsVerified:   true,
	})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	return &fixture{db: db, node: genID, merchantSvc: merchantSvc, merchant: merchant}
}

func newService(t *testing.T, f *fixture, sim gatewaydomain.Simulator) *transactionservice.Service {
	t.Helper()

	calc := commission.NewCalculator(config.NewStaticCommissionHolder(config.DefaultCommissionConfig()))
	registry := gateway.NewRegistry(
		orange.New(calc, sim),
		mtn.New(calc, sim),
		wave.New(calc, sim),
	)

	return transactionservice.New(transactionservice.Params{
		DB:          f.db,
		Log:         zap.NewNop(),
		Cfg:         config.Config{Environment: "test", DefaultCurrency: "XOF"},
		GenID:       f.node,
		Repo:        transactionrepo.Provide(),
		Gateways:    registry,
		MerchantSvc: f.merchantSvc,
	})
}

func TestProcessCompletedPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 20)
	svc := newService(t, f, gatewaydomain.AlwaysApprove())

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "orange_money",
		Amount:        10_000,
		CustomerPhone: "+22670000001",
		Description:   "facture CIE",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success")
	}

	tx := resp.Transaction
	if tx.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", tx.Status)
	}
	if tx.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
	if tx.TotalFee != tx.ProviderFee+tx.PlatformFee {
		t.Fatalf("fee identity broken: %d != %d + %d", tx.TotalFee, tx.ProviderFee, tx.PlatformFee)
	}
	if tx.NetAmount != tx.Amount-tx.TotalFee {
		t.Fatalf("net identity broken: %d != %d - %d", tx.NetAmount, tx.Amount, tx.TotalFee)
	}
	// 200bp operator + 50bp platform on 10_000.
	if tx.ProviderFee != 200 || tx.PlatformFee != 50 {
		t.Fatalf("unexpected fees: provider=%d platform=%d", tx.ProviderFee, tx.PlatformFee)
	}

	merchant, err := f.merchantSvc.GetByID(ctx, f.merchant.ID.String())
	if err != nil {
		t.Fatalf("reload merchant: %v", err)
	}
	if merchant.TotalTransactions != 1 {
		t.Fatalf("expected 1 transaction recorded, got %d", merchant.TotalTransactions)
	}
	if merchant.TotalRevenue != tx.NetAmount {
		t.Fatalf("expected revenue %d, got %d", tx.NetAmount, merchant.TotalRevenue)
	}
}

func TestProcessDeclinedPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 21)
	svc := newService(t, f, gatewaydomain.AlwaysDecline("insufficient balance"))

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "mtn_money",
		Amount:        5_000,
		CustomerPhone: "+22670000002",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure")
	}

	tx := resp.Transaction
	if tx.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", tx.Status)
	}
	if tx.FailedAt == nil {
		t.Fatalf("expected failed_at to be set")
	}
	if tx.FailureReason != "insufficient balance" {
		t.Fatalf("unexpected failure reason %q", tx.FailureReason)
	}

	merchant, err := f.merchantSvc.GetByID(ctx, f.merchant.ID.String())
	if err != nil {
		t.Fatalf("reload merchant: %v", err)
	}
	if merchant.TotalTransactions != 0 || merchant.TotalRevenue != 0 {
		t.Fatalf("declined payment must not move merchant counters")
	}
}

func TestProcessValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 22)
	svc := newService(t, f, gatewaydomain.AlwaysApprove())

	cases := []struct {
		name string
		req  domain.ProcessRequest
		want error
	}{
		{
			name: "zero amount",
			req:  domain.ProcessRequest{Provider: "wave", Amount: 0, CustomerPhone: "+22670000003"},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "unknown provider",
			req:  domain.ProcessRequest{Provider: "paypal", Amount: 1_000, CustomerPhone: "+22670000003"},
			want: domain.ErrInvalidProvider,
		},
		{
			name: "missing phone",
			req:  domain.ProcessRequest{Provider: "wave", Amount: 1_000},
			want: domain.ErrMissingPhone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Process(ctx, tc.req); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	var count int64
	if err := f.db.Raw("SELECT COUNT(1) FROM transactions").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected payments must not be persisted, found %d rows", count)
	}
}

func TestRefundCompletedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 23)
	svc := newService(t, f, gatewaydomain.AlwaysApprove())

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "wave",
		Amount:        20_000,
		CustomerPhone: "+22670000004",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	refunded, err := svc.Refund(ctx, domain.RefundRequest{
		TransactionID: resp.Transaction.TransactionID,
		Reason:        "customer request",
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != domain.StatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.Status)
	}
	if refunded.RefundedAmount != 20_000 {
		t.Fatalf("expected full refund, got %d", refunded.RefundedAmount)
	}
	if refunded.RefundID == "" || refunded.RefundedAt == nil {
		t.Fatalf("expected refund id and timestamp")
	}

	// A second attempt must be rejected and leave the record untouched.
	if _, err := svc.Refund(ctx, domain.RefundRequest{TransactionID: resp.Transaction.TransactionID}); err != domain.ErrAlreadyRefunded {
		t.Fatalf("expected ErrAlreadyRefunded, got %v", err)
	}

	reloaded, err := svc.GetByTransactionID(ctx, resp.Transaction.TransactionID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RefundID != refunded.RefundID {
		t.Fatalf("refund id changed on retry")
	}

	merchant, err := f.merchantSvc.GetByID(ctx, f.merchant.ID.String())
	if err != nil {
		t.Fatalf("reload merchant: %v", err)
	}
	if merchant.TotalRevenue != 0 {
		t.Fatalf("expected revenue reversed to 0, got %d", merchant.TotalRevenue)
	}
}

func TestRefundGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 24)
	svc := newService(t, f, gatewaydomain.AlwaysDecline("incorrect PIN"))

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "orange_money",
		Amount:        3_000,
		CustomerPhone: "+22670000005",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, err := svc.Refund(ctx, domain.RefundRequest{TransactionID: resp.Transaction.TransactionID}); err != domain.ErrNotCompleted {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if _, err := svc.Refund(ctx, domain.RefundRequest{TransactionID: "TXN_DOES_NOT_EXIST"}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefundPartialAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 25)
	svc := newService(t, f, gatewaydomain.AlwaysApprove())

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "mtn_money",
		Amount:        8_000,
		CustomerPhone: "+22670000006",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if _, err := svc.Refund(ctx, domain.RefundRequest{
		TransactionID: resp.Transaction.TransactionID,
		Amount:        9_000,
	}); err != domain.ErrInvalidRefund {
		t.Fatalf("expected ErrInvalidRefund for amount above original, got %v", err)
	}

	refunded, err := svc.Refund(ctx, domain.RefundRequest{
		TransactionID: resp.Transaction.TransactionID,
		Amount:        2_500,
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.RefundedAmount != 2_500 {
		t.Fatalf("expected partial amount 2500, got %d", refunded.RefundedAmount)
	}
}

func TestHandleWebhookRedelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 26)
	svc := newService(t, f, gatewaydomain.AlwaysApprove())

	resp, err := svc.Process(ctx, domain.ProcessRequest{
		Provider:      "wave",
		Amount:        4_000,
		CustomerPhone: "+22670000007",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	payload := []byte(fmt.Sprintf(`{"id":%q,"payment_status":"failed","last_payment_error":{"message":"expired"}}`, resp.Transaction.ProviderTransactionID))
	result, err := svc.HandleWebhook(ctx, "wave", payload, nil)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}

	// The record finalized synchronously; redelivery must not regress it.
	if result.Status != domain.StatusCompleted {
		t.Fatalf("expected completed to stick, got %s", result.Status)
	}
	if result.TransactionID != resp.Transaction.TransactionID {
		t.Fatalf("expected %s, got %s", resp.Transaction.TransactionID, result.TransactionID)
	}

	if _, err := svc.HandleWebhook(ctx, "wave", []byte(`{"id":"unknown","payment_status":"succeeded"}`), nil); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown reference, got %v", err)
	}
}

func TestListFiltersByProviderAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 27)
	svc := newService(t, f, gatewaydomain.Sequence(
		gatewaydomain.Outcome{Status: domain.StatusCompleted},
		gatewaydomain.Outcome{Status: domain.StatusFailed, FailureReason: "daily limit reached"},
		gatewaydomain.Outcome{Status: domain.StatusCompleted},
	))

	for i, provider := range []string{"orange_money", "orange_money", "wave"} {
		if _, err := svc.Process(ctx, domain.ProcessRequest{
			Provider:      provider,
			Amount:        1_000 * int64(i+1),
			CustomerPhone: fmt.Sprintf("+2267000001%d", i),
		}); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}

	resp, err := svc.List(ctx, domain.ListRequest{Provider: "orange_money", Status: "completed"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("expected 1 match, got %d", len(resp.Transactions))
	}
	if resp.Transactions[0].Provider != "orange_money" || resp.Transactions[0].Status != domain.StatusCompleted {
		t.Fatalf("filter returned wrong row: %+v", resp.Transactions[0])
	}
	if resp.HasMore {
		t.Fatalf("expected single page")
	}
}
