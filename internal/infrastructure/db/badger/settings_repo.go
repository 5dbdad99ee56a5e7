package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const (
	settingsKey = "settings"
	settingsDir = "settings"
)

type settingsRepository struct {
	store *badgerhold.Store
}

func NewSettingsRepository(
	baseDir string, logger badger.Logger,
) (domain.SettingsRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, settingsDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %s", err)
	}
	return &settingsRepository{store}, nil
}

func (s *settingsRepository) AddSettings(ctx context.Context, settings domain.Settings) error {
	return s.store.Insert(settingsKey, settings)
}

func (s *settingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := s.store.Get(settingsKey, &settings)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("settings not found")
		}
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings overwrites only the fields set in newSettings.
func (s *settingsRepository) UpdateSettings(
	ctx context.Context, newSettings domain.Settings,
) error {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	if len(newSettings.BeneficiaryID) > 0 {
		settings.BeneficiaryID = newSettings.BeneficiaryID
	}
	if len(newSettings.FiatCurrency) > 0 {
		settings.FiatCurrency = newSettings.FiatCurrency
	}
	if len(newSettings.Unit) > 0 {
		settings.Unit = newSettings.Unit
	}
	return s.store.Update(settingsKey, *settings)
}

func (s *settingsRepository) CleanSettings(ctx context.Context) error {
	return s.store.Delete(settingsKey, domain.Settings{})
}

func (s *settingsRepository) Close() {
	// nolint:all
	s.store.Close()
}
