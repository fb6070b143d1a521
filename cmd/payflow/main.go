package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/fixora/payflow/internal/config"
	"github.com/fixora/payflow/internal/fulfillment"
	"github.com/fixora/payflow/internal/logger"
	"github.com/fixora/payflow/internal/migration"
	"github.com/fixora/payflow/internal/notification"
	obsmetrics "github.com/fixora/payflow/internal/observability/metrics"
	"github.com/fixora/payflow/internal/payment"
	"github.com/fixora/payflow/internal/ratelimit"
	"github.com/fixora/payflow/internal/server"
	"github.com/fixora/payflow/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		obsmetrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		ratelimit.Module,
		fulfillment.Module,
		notification.Module,
		payment.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
