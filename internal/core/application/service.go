package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/minmo-hq/offrampd/internal/core/ports"
	"github.com/minmo-hq/offrampd/pkg/minmo"
	log "github.com/sirupsen/logrus"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// SwapClient is the remote swap service surface consumed by the
// application.
type SwapClient interface {
	CreateSwap(request minmo.CreateSwapRequest) (*minmo.Swap, error)
	GetSwap(swapId string) (*minmo.Swap, error)
	GetAgentSwaps(beneficiaryId string) ([]minmo.Swap, error)
	GetFxRate(base, target minmo.Currency) (*minmo.FxRateResponse, error)
}

// CreateSwapParams is the validated outcome of the wizard screens.
type CreateSwapParams struct {
	FiatAmount   string
	Destination  domain.DestinationDetails
	ExchangeRate float64
	AgentMargin  int
}

// Service orchestrates the offramp wizard: it creates swaps remotely,
// keeps this device's swap references in the local cache, reconstructs
// history, and hands out lifecycle trackers.
type Service struct {
	BuildInfo BuildInfo

	repoManager  ports.RepoManager
	schedulerSvc ports.SchedulerService
	client       SwapClient
	rates        *RateCache

	fiatCurrency    minmo.Currency
	pollInterval    time.Duration
	refreshInterval time.Duration

	now func() time.Time
}

func NewService(
	buildInfo BuildInfo,
	repoManager ports.RepoManager,
	schedulerSvc ports.SchedulerService,
	client SwapClient,
	rates *RateCache,
	fiatCurrency minmo.Currency,
	pollInterval, refreshInterval time.Duration,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if client == nil {
		return nil, fmt.Errorf("missing swap client")
	}
	if rates == nil {
		rates = NewRateCache(client, DefaultRateTTL)
	}
	if fiatCurrency == "" {
		fiatCurrency = minmo.CurrencyKes
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultRateTTL
	}

	return &Service{
		BuildInfo:       buildInfo,
		repoManager:     repoManager,
		schedulerSvc:    schedulerSvc,
		client:          client,
		rates:           rates,
		fiatCurrency:    fiatCurrency,
		pollInterval:    pollInterval,
		refreshInterval: refreshInterval,
		now:             time.Now,
	}, nil
}

// Start begins the recurring exchange-rate refresh.
func (s *Service) Start() error {
	if s.schedulerSvc == nil {
		return nil
	}
	s.schedulerSvc.Start()
	return s.schedulerSvc.ScheduleRateRefresh(s.refreshInterval, func() {
		if _, err := s.rates.Refresh(minmo.CurrencyBtc, s.fiatCurrency); err != nil {
			log.WithError(err).Warn("failed to refresh exchange rate")
		}
	})
}

func (s *Service) Stop() {
	if s.schedulerSvc != nil {
		s.schedulerSvc.CancelRateRefresh()
		s.schedulerSvc.Stop()
	}
	s.repoManager.Close()
}

func (s *Service) FiatCurrency() minmo.Currency {
	return s.fiatCurrency
}

// BeneficiaryID returns the stable per-device identifier, generating
// and persisting one on first use. When the settings store is broken a
// throwaway id is returned so the wizard keeps working, the failure is
// only logged.
func (s *Service) BeneficiaryID(ctx context.Context) string {
	settingsRepo := s.repoManager.Settings()

	settings, err := settingsRepo.GetSettings(ctx)
	if err == nil && settings.BeneficiaryID != "" {
		return settings.BeneficiaryID
	}

	id := uuid.NewString()
	if err != nil {
		newSettings := domain.Settings{
			BeneficiaryID: id,
			FiatCurrency:  string(s.fiatCurrency),
			Unit:          "sat",
		}
		if err := settingsRepo.AddSettings(ctx, newSettings); err != nil {
			log.WithError(err).Warn("failed to persist beneficiary id")
		}
		return id
	}

	if err := settingsRepo.UpdateSettings(
		ctx, domain.Settings{BeneficiaryID: id},
	); err != nil {
		log.WithError(err).Warn("failed to persist beneficiary id")
	}
	return id
}

// ResetBeneficiary discards the current identifier and generates a new
// one. Existing swap references keep their old grouping key and are
// therefore no longer listed.
func (s *Service) ResetBeneficiary(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.repoManager.Settings().UpdateSettings(
		ctx, domain.Settings{BeneficiaryID: id},
	); err != nil {
		return "", err
	}
	return id, nil
}

// CreateSwap submits the creation request and caches a local reference
// on success. The reference save is best effort: the remote service
// stays the source of truth, so a failed save is logged and dropped.
func (s *Service) CreateSwap(ctx context.Context, params CreateSwapParams) (*minmo.Swap, error) {
	if params.Destination == nil {
		return nil, fmt.Errorf("missing payment destination")
	}

	beneficiaryId := s.BeneficiaryID(ctx)

	swap, err := s.client.CreateSwap(minmo.CreateSwapRequest{
		Type:               minmo.SwapTypeOfframp,
		FiatAmount:         params.FiatAmount,
		FiatCurrency:       s.fiatCurrency,
		PaymentChannel:     string(params.Destination.Rail()),
		UserPaymentDetails: params.Destination.Fields(),
		AgentMargin:        params.AgentMargin,
		BeneficiaryId:      beneficiaryId,
		Metadata: map[string]any{
			"exchangeRate": params.ExchangeRate,
		},
	})
	if err != nil {
		return nil, err
	}

	ref := domain.SwapReference{
		SwapID:        swap.Id,
		BeneficiaryID: beneficiaryId,
		SavedAt:       s.now(),
	}
	if err := s.repoManager.SwapReferences().Save(ctx, ref); err != nil {
		log.WithError(err).WithField("swap", swap.Id).
			Warn("failed to cache swap reference")
	}

	return swap, nil
}

func (s *Service) GetSwap(ctx context.Context, swapId string) (*minmo.Swap, error) {
	return s.client.GetSwap(swapId)
}

// TrackSwap returns a started tracker polling the swap's lifecycle at
// the configured interval. The caller owns the tracker and must Stop it
// when the owning view goes away.
func (s *Service) TrackSwap(swap minmo.Swap) *Tracker {
	tracker := NewTracker(s.client, swap, s.pollInterval)
	tracker.Start()
	return tracker
}

// History reconstructs this device's swap history: non-expired local
// references cross-referenced against a bulk remote fetch, then
// filtered and sorted. Remote failures yield an empty list rather than
// an error so the view can offer a retry.
func (s *Service) History(ctx context.Context, filter Filter, by Sort) []HistoryRecord {
	beneficiaryId := s.BeneficiaryID(ctx)

	refs, err := s.repoManager.SwapReferences().List(ctx, beneficiaryId, s.now())
	if err != nil {
		// broken cache reads degrade to an empty history
		log.WithError(err).Warn("failed to list swap references")
		return []HistoryRecord{}
	}
	if len(refs) == 0 {
		return []HistoryRecord{}
	}

	swaps, err := s.client.GetAgentSwaps(beneficiaryId)
	if err != nil {
		log.WithError(err).Warn("failed to fetch agent swaps")
		return []HistoryRecord{}
	}

	refsById := make(map[string]domain.SwapReference, len(refs))
	for _, ref := range refs {
		refsById[ref.SwapID] = ref
	}

	// inner join: a reference without a matching remote swap is dropped,
	// the remote record may have been purged or never committed
	records := make([]HistoryRecord, 0, len(refs))
	for _, swap := range swaps {
		ref, ok := refsById[swap.Id]
		if !ok {
			continue
		}
		records = append(records, HistoryRecord{
			Swap:          swap,
			BeneficiaryID: ref.BeneficiaryID,
			SavedAt:       ref.SavedAt,
		})
	}

	return SortRecords(FilterRecords(records, filter), by)
}

// HistoryCount returns the number of non-expired references cached for
// this device.
func (s *Service) HistoryCount(ctx context.Context) int {
	refs, err := s.repoManager.SwapReferences().List(
		ctx, s.BeneficiaryID(ctx), s.now(),
	)
	if err != nil {
		log.WithError(err).Warn("failed to count swap references")
		return 0
	}
	return len(refs)
}

func (s *Service) RemoveFromHistory(ctx context.Context, swapId string) (bool, error) {
	return s.repoManager.SwapReferences().Remove(ctx, swapId)
}

func (s *Service) ClearHistory(ctx context.Context) error {
	return s.repoManager.SwapReferences().Clear(ctx)
}

// Rate returns the BTC rate against the configured fiat currency,
// served from the TTL cache when fresh.
func (s *Service) Rate() (*minmo.FxRateResponse, error) {
	return s.rates.GetRate(minmo.CurrencyBtc, s.fiatCurrency)
}

// RateFor serves an arbitrary currency pair from the same cache.
func (s *Service) RateFor(base, target minmo.Currency) (*minmo.FxRateResponse, error) {
	return s.rates.GetRate(base, target)
}
