package domain

import "context"

// Settings holds the per-device preferences of the wizard. The
// beneficiary id is generated once on first use and must stay stable
// until an explicit reset.
type Settings struct {
	BeneficiaryID string
	FiatCurrency  string
	Unit          string
}

type SettingsRepository interface {
	AddSettings(ctx context.Context, settings Settings) error
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	CleanSettings(ctx context.Context) error
	Close()
}
