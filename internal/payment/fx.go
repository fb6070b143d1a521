package payment

import (
	"go.uber.org/fx"

	"github.com/fixora/payflow/internal/config"
	"github.com/fixora/payflow/internal/gateway/razorpay"
	"github.com/fixora/payflow/internal/payment/repository"
	paymentservice "github.com/fixora/payflow/internal/payment/service"
	"github.com/fixora/payflow/internal/payment/webhook"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config) *razorpay.Client {
		return razorpay.NewClient(cfg.Gateway)
	}),
	fx.Provide(repository.Provide),
	fx.Provide(paymentservice.NewService),
	fx.Provide(webhook.NewService),
)
