package notification

import (
	"go.uber.org/fx"

	"github.com/fixora/payflow/internal/notification/repository"
	"github.com/fixora/payflow/internal/notification/service"
)

var Module = fx.Module("notification",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
