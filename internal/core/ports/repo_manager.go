package ports

import "github.com/minmo-hq/offrampd/internal/core/domain"

type RepoManager interface {
	Settings() domain.SettingsRepository
	SwapReferences() domain.SwapReferenceRepository
	Close()
}
