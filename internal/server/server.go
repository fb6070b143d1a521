package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/config"
	obsmiddleware "github.com/fixora/payflow/internal/observability/logger"
	obsmetrics "github.com/fixora/payflow/internal/observability/metrics"
	paymentdomain "github.com/fixora/payflow/internal/payment/domain"
	"github.com/fixora/payflow/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))
	r.Use(CORSMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(log, registry)
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	paymentSvc   paymentdomain.Service
	webhookSvc   paymentdomain.WebhookService
	orderLimiter *ratelimit.OrderLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	PaymentSvc   paymentdomain.Service
	WebhookSvc   paymentdomain.WebhookService
	OrderLimiter *ratelimit.OrderLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		paymentSvc:   p.PaymentSvc,
		webhookSvc:   p.WebhookSvc,
		orderLimiter: p.OrderLimiter,
		obsMetrics:   p.ObsMetrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.POST("/payment-orders", s.HandleCreatePaymentOrder)
	s.engine.OPTIONS("/payment-orders", noContent)
	s.engine.POST("/payment-orders/verify", s.HandleVerifyPayment)
	s.engine.OPTIONS("/payment-orders/verify", noContent)
	s.engine.POST("/payment-webhooks", s.HandlePaymentWebhook)
	s.engine.OPTIONS("/payment-webhooks", noContent)
}

// noContent backs the explicit OPTIONS routes; the CORS middleware answers
// before it runs.
func noContent(c *gin.Context) {
	c.Status(http.StatusOK)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
