package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	aggregationdomain "github.com/sahelpay/sahelpay/internal/aggregation/domain"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
)

type fakeAggregationService struct {
	createCalls int
	lastCreate  aggregationdomain.CreateRequest
	createResp  aggregationdomain.CreateResponse
	createErr   error
	getErr      error
}

func (f *fakeAggregationService) Create(ctx context.Context, req aggregationdomain.CreateRequest) (aggregationdomain.CreateResponse, error) {
	f.createCalls++
	f.lastCreate = req
	_ = ctx
	return f.createResp, f.createErr
}

func (f *fakeAggregationService) Get(ctx context.Context, ref string) (aggregationdomain.GetResponse, error) {
	_ = ctx
	_ = ref
	return aggregationdomain.GetResponse{}, f.getErr
}

func (f *fakeAggregationService) Logs(ctx context.Context, ref string) (aggregationdomain.LogsResponse, error) {
	_ = ctx
	_ = ref
	return aggregationdomain.LogsResponse{}, f.getErr
}

func (f *fakeAggregationService) ListByPhone(ctx context.Context, phone string) ([]aggregationdomain.Aggregation, error) {
	_ = ctx
	_ = phone
	return nil, nil
}

type fakeTransactionService struct {
	refundCalls int
	lastRefund  transactiondomain.RefundRequest
	refundErr   error
}

func (f *fakeTransactionService) Process(ctx context.Context, req transactiondomain.ProcessRequest) (transactiondomain.ProcessResponse, error) {
	_ = ctx
	_ = req
	return transactiondomain.ProcessResponse{}, nil
}

func (f *fakeTransactionService) Refund(ctx context.Context, req transactiondomain.RefundRequest) (*transactiondomain.Transaction, error) {
	f.refundCalls++
	f.lastRefund = req
	_ = ctx
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	return &transactiondomain.Transaction{ID: snowflake.ID(1), TransactionID: req.TransactionID}, nil
}

func (f *fakeTransactionService) HandleWebhook(ctx context.Context, provider string, payload []byte, headers map[string][]string) (*transactiondomain.WebhookResult, error) {
	_ = ctx
	_ = provider
	_ = payload
	_ = headers
	return nil, nil
}

func (f *fakeTransactionService) GetByTransactionID(ctx context.Context, transactionID string) (*transactiondomain.Transaction, error) {
	_ = ctx
	_ = transactionID
	return nil, transactiondomain.ErrNotFound
}

func (f *fakeTransactionService) List(ctx context.Context, req transactiondomain.ListRequest) (transactiondomain.ListResponse, error) {
	_ = ctx
	_ = req
	return transactiondomain.ListResponse{}, nil
}

func newTestRouter(aggSvc aggregationdomain.Service, txSvc transactiondomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		engine:         gin.New(),
		aggregationSvc: aggSvc,
		transactionSvc: txSvc,
	}
	srv.engine.Use(ErrorHandlingMiddleware())
	srv.registerAPIRoutes()

	return srv.engine
}

func TestCreateAggregationHandler(t *testing.T) {
	aggSvc := &fakeAggregationService{
		createResp: aggregationdomain.CreateResponse{
			Aggregation: &aggregationdomain.Aggregation{
				ID:            snowflake.ID(42),
				AggregationID: "AGG_TEST",
				Status:        aggregationdomain.StatusCompleted,
				TotalAmount:   15_000,
			},
			Summary: aggregationdomain.Summary{
				Total:       2,
				Success:     2,
				TotalAmount: 15_000,
				Status:      aggregationdomain.StatusCompleted,
			},
			Success: true,
			Message: "payment aggregation completed",
		},
	}
	router := newTestRouter(aggSvc, &fakeTransactionService{})

	body := `{
		"payments": [
			{"description": "SONABEL bill", "amount": 5000, "reference": "FACT-001", "category": "electricity"},
			{"description": "ONEA bill", "amount": 10000, "reference": "FACT-002", "category": "water"}
		],
		"provider": "orange_money",
		"customer_phone": "70123456"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/aggregations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sahelpay-test/1.0")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	if aggSvc.createCalls != 1 {
		t.Fatalf("expected one service call, got %d", aggSvc.createCalls)
	}
	if got := aggSvc.lastCreate; len(got.Payments) != 2 || got.Provider != "orange_money" || got.CustomerPhone != "70123456" {
		t.Fatalf("unexpected create request forwarded: %+v", got)
	}
	if aggSvc.lastCreate.UserAgent != "sahelpay-test/1.0" {
		t.Fatalf("expected user agent to be captured, got %q", aggSvc.lastCreate.UserAgent)
	}

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Aggregation aggregationdomain.Aggregation `json:"aggregation"`
			Summary     aggregationdomain.Summary     `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success {
		t.Fatal("expected success envelope")
	}
	if envelope.Data.Aggregation.AggregationID != "AGG_TEST" {
		t.Fatalf("unexpected aggregation id %q", envelope.Data.Aggregation.AggregationID)
	}
	if envelope.Data.Summary.Success != 2 {
		t.Fatalf("unexpected summary %+v", envelope.Data.Summary)
	}
}

func TestCreateAggregationValidationErrorReturns400(t *testing.T) {
	aggSvc := &fakeAggregationService{createErr: aggregationdomain.ErrMissingPhone}
	router := newTestRouter(aggSvc, &fakeTransactionService{})

	body := `{"payments": [{"description": "bill", "amount": 5000, "reference": "FACT-001", "category": "water"}], "provider": "wave"}`
	req := httptest.NewRequest(http.MethodPost, "/api/aggregations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Type != "validation_error" {
		t.Fatalf("unexpected error type %q", envelope.Error.Type)
	}
	if len(envelope.Error.Errors) != 1 || envelope.Error.Errors[0].Field != "phone" {
		t.Fatalf("unexpected validation errors %+v", envelope.Error.Errors)
	}
}

func TestGetAggregationNotFoundReturns404(t *testing.T) {
	aggSvc := &fakeAggregationService{getErr: aggregationdomain.ErrNotFound}
	router := newTestRouter(aggSvc, &fakeTransactionService{})

	req := httptest.NewRequest(http.MethodGet, "/api/aggregations/AGG_MISSING", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestRefundTransactionConflictReturns409(t *testing.T) {
	txSvc := &fakeTransactionService{refundErr: transactiondomain.ErrAlreadyRefunded}
	router := newTestRouter(&fakeAggregationService{}, txSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/TXN_TEST/refund", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d (%s)", resp.Code, resp.Body.String())
	}
	if txSvc.refundCalls != 1 {
		t.Fatalf("expected one refund call, got %d", txSvc.refundCalls)
	}
	if txSvc.lastRefund.TransactionID != "TXN_TEST" {
		t.Fatalf("unexpected refund request %+v", txSvc.lastRefund)
	}
}

func TestRefundTransactionForwardsBody(t *testing.T) {
	txSvc := &fakeTransactionService{}
	router := newTestRouter(&fakeAggregationService{}, txSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/TXN_TEST/refund",
		bytes.NewBufferString(`{"amount": 2500, "reason": "customer dispute"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if txSvc.lastRefund.Amount != 2500 || txSvc.lastRefund.Reason != "customer dispute" {
		t.Fatalf("unexpected refund request %+v", txSvc.lastRefund)
	}
}
