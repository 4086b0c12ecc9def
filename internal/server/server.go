package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sahelpay/sahelpay/internal/aggregation"
	aggregationdomain "github.com/sahelpay/sahelpay/internal/aggregation/domain"
	"github.com/sahelpay/sahelpay/internal/commission"
	"github.com/sahelpay/sahelpay/internal/config"
	"github.com/sahelpay/sahelpay/internal/gateway"
	"github.com/sahelpay/sahelpay/internal/merchant"
	merchantdomain "github.com/sahelpay/sahelpay/internal/merchant/domain"
	obsmiddleware "github.com/sahelpay/sahelpay/internal/observability/logger"
	obsmetrics "github.com/sahelpay/sahelpay/internal/observability/metrics"
	"github.com/sahelpay/sahelpay/internal/transaction"
	transactiondomain "github.com/sahelpay/sahelpay/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	commission.Module,
	gateway.Module,
	merchant.Module,
	transaction.Module,
	aggregation.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	aggregationSvc aggregationdomain.Service
	transactionSvc transactiondomain.Service
	merchantSvc    merchantdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	AggregationSvc aggregationdomain.Service
	TransactionSvc transactiondomain.Service
	MerchantSvc    merchantdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		aggregationSvc: p.AggregationSvc,
		transactionSvc: p.TransactionSvc,
		merchantSvc:    p.MerchantSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Aggregations --------
	api.POST("/aggregations", s.CreateAggregation)
	api.GET("/aggregations", s.ListAggregations)
	api.GET("/aggregations/:id", s.GetAggregation)
	api.GET("/aggregations/:id/logs", s.GetAggregationLogs)

	// -------- Payments --------
	api.POST("/payments", s.ProcessPayment)
	api.POST("/payments/webhooks/:provider", s.PaymentWebhook)

	// -------- Transactions --------
	api.GET("/transactions", s.ListTransactions)
	api.GET("/transactions/:id", s.GetTransaction)
	api.POST("/transactions/:id/refund", s.RefundTransaction)

	// -------- Merchants --------
	api.POST("/merchants", s.CreateMerchant)
	api.GET("/merchants", s.ListMerchants)
	api.GET("/merchants/:id", s.GetMerchant)
}
