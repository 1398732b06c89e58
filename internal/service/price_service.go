package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"go.uber.org/zap"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

type PriceService struct {
	store  PriceStore
	cache  PriceCache
	logger *zap.Logger
}

// NewPriceService creates the price catalog; cache may be nil
func NewPriceService(store PriceStore, cache PriceCache, logger *zap.Logger) *PriceService {
	return &PriceService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// GetPrice returns the current price of the interview type
func (s *PriceService) GetPrice(ctx context.Context, interviewType model.InterviewType) (*model.Price, error) {
	if !interviewType.Valid() {
		return nil, apperr.Validation("unknown interview type %q", interviewType)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, interviewType)
		if err != nil {
			s.logger.Warn("Price cache read failed", zap.String("type", string(interviewType)), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	price, err := s.store.Get(ctx, interviewType)
	if err != nil {
		return nil, apperr.Storage("get price", err)
	}
	if price == nil {
		return nil, apperr.NotFound("no price set for %s interviews", interviewType)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, price); err != nil {
			s.logger.Warn("Price cache write failed", zap.String("type", string(interviewType)), zap.Error(err))
		}
	}

	return price, nil
}

// SetPrice creates or replaces the price of an interview type.
// Callers make sure updatedBy is an admin.
func (s *PriceService) SetPrice(ctx context.Context, interviewType model.InterviewType, amount int64, currency string, updatedBy int64) (*model.Price, error) {
	if !interviewType.Valid() {
		return nil, apperr.Validation("unknown interview type %q", interviewType)
	}
	if amount <= 0 {
		return nil, apperr.Validation("price must be positive")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !currencyCode.MatchString(currency) {
		return nil, apperr.Validation("currency must be a 3-letter ISO code")
	}

	price := &model.Price{
		InterviewType: interviewType,
		Amount:        amount,
		Currency:      currency,
	}
	if updatedBy != 0 {
		price.UpdatedBy = &updatedBy
	}

	if err := s.store.Upsert(ctx, price); err != nil {
		return nil, apperr.Storage("set price", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, interviewType); err != nil {
			s.logger.Warn("Price cache invalidation failed", zap.String("type", string(interviewType)), zap.Error(err))
		}
	}

	s.logger.Info("Price updated",
		zap.String("type", string(interviewType)),
		zap.Int64("amount", amount),
		zap.String("currency", currency),
		zap.Int64("updated_by", updatedBy),
	)

	return price, nil
}

// SeedDefaults inserts the default price of every type that has none
func (s *PriceService) SeedDefaults(ctx context.Context) error {
	for _, t := range model.InterviewTypes {
		inserted, err := s.store.InsertIfMissing(ctx, &model.Price{
			InterviewType: t,
			Amount:        model.DefaultPrices[t],
			Currency:      model.DefaultCurrency,
		})
		if err != nil {
			return apperr.Storage("seed prices", err)
		}
		if inserted {
			s.logger.Info("Default price seeded",
				zap.String("type", string(t)),
				zap.Int64("amount", model.DefaultPrices[t]))
		}
	}
	return nil
}
