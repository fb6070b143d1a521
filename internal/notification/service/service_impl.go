package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fixora/payflow/internal/notification/domain"
	"github.com/fixora/payflow/internal/notification/provider"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Provider provider.Provider `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	provider provider.Provider
}

func NewService(p Params) domain.Service {
	prov := p.Provider
	if prov == nil {
		prov = &provider.NoOpProvider{}
	}
	return &Service{
		log:      p.Log.Named("notification.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		provider: prov,
	}
}

func (s *Service) NotifyPaymentStatus(ctx context.Context, db *gorm.DB, n *domain.Notification) (bool, error) {
	exists, err := s.repo.Exists(ctx, db, n.RecipientID, n.EntityID, n.PaymentStatus)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if n.ID == 0 {
		n.ID = s.genID.Generate()
	}
	if n.Type == "" {
		n.Type = domain.TypePayment
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, db, n); err != nil {
		return false, err
	}

	if err := s.provider.Deliver(ctx, n); err != nil {
		s.log.Warn("notification delivery failed",
			zap.Int64("notification_id", int64(n.ID)),
			zap.Error(err),
		)
	}
	return true, nil
}
