package fulfillment

import (
	"go.uber.org/fx"

	"github.com/fixora/payflow/internal/fulfillment/repository"
)

var Module = fx.Module("fulfillment",
	fx.Provide(repository.Provide),
)
