package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	domaincatalog "seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
	"seabreeze/internal/domain/shared/money"
)

type catalogFixtures struct {
	Units []unitFixture `json:"units"`
	Rates []rateFixture `json:"rates"`
}

type unitFixture struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MinCapacity *int   `json:"min_capacity"`
	MaxCapacity int    `json:"max_capacity"`
	Active      bool   `json:"active"`
}

type rateFixture struct {
	ID                     string `json:"id"`
	UnitID                 string `json:"unit_id"`
	Mode                   string `json:"mode"`
	BaseRate               int64  `json:"base_rate"`
	Currency               string `json:"currency"`
	AdditionalOccupantRate *int64 `json:"additional_occupant_rate"`
	AdultEntranceFee       *int64 `json:"adult_entrance_fee"`
	ChildEntranceFee       *int64 `json:"child_entrance_fee"`
	ChildMaxAge            *int   `json:"child_max_age"`
	IncludesFreeCottage    bool   `json:"includes_free_cottage"`
	IncludesFreeEntrance   bool   `json:"includes_free_entrance"`
	Active                 bool   `json:"active"`
}

func (a application) loadCatalogFixtures(ctx context.Context, path, defaultCurrency string, logger *slog.Logger) error {
	if defaultCurrency == "" {
		defaultCurrency = pricing.DefaultCurrency
	}
	if path == "" {
		path = filepath.Join("fixtures", "catalog.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("catalog fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("catalog fixtures file empty", "path", path)
		return nil
	}

	var fixtures catalogFixtures
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures.Units {
		unit := &domaincatalog.Unit{
			ID:          domaincatalog.UnitID(fx.ID),
			Name:        fx.Name,
			MinCapacity: fx.MinCapacity,
			MaxCapacity: fx.MaxCapacity,
			Active:      fx.Active,
		}
		if err := a.catalog.SaveUnit(ctx, unit); err != nil {
			return fmt.Errorf("save unit %s: %w", fx.ID, err)
		}
	}
	for _, fx := range fixtures.Rates {
		mode, err := domaincatalog.ParseMode(fx.Mode)
		if err != nil {
			return fmt.Errorf("rate %s: %w", fx.ID, err)
		}
		currency := fx.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		rate := &domaincatalog.RateRecord{
			ID:                     domaincatalog.RateID(fx.ID),
			UnitID:                 domaincatalog.UnitID(fx.UnitID),
			Mode:                   mode,
			BaseRate:               money.Must(fx.BaseRate, currency),
			AdditionalOccupantRate: optionalMoney(fx.AdditionalOccupantRate, currency),
			AdultEntranceFee:       optionalMoney(fx.AdultEntranceFee, currency),
			ChildEntranceFee:       optionalMoney(fx.ChildEntranceFee, currency),
			ChildMaxAge:            fx.ChildMaxAge,
			IncludesFreeCottage:    fx.IncludesFreeCottage,
			IncludesFreeEntrance:   fx.IncludesFreeEntrance,
			Active:                 fx.Active,
		}
		if err := a.catalog.SaveRate(ctx, rate); err != nil {
			return fmt.Errorf("save rate %s: %w", fx.ID, err)
		}
	}

	logger.Info("catalog fixtures loaded", "units", len(fixtures.Units), "rates", len(fixtures.Rates), "path", path)
	return nil
}

func optionalMoney(amount *int64, currency string) *money.Money {
	if amount == nil {
		return nil
	}
	value := money.Must(*amount, currency)
	return &value
}
