package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/minmo-hq/offrampd/internal/core/application"
	"github.com/minmo-hq/offrampd/internal/core/domain"
	"github.com/minmo-hq/offrampd/pkg/minmo"
	"github.com/minmo-hq/offrampd/utils"
)

// registerValidators hooks the destination format checks into gin's
// binding validator.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// nolint:all
	v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		return utils.IsValidPhoneNumber(fl.Field().String())
	})
	// nolint:all
	v.RegisterValidation("accountnumber", func(fl validator.FieldLevel) bool {
		return utils.IsValidAccountNumber(fl.Field().String())
	})
	// nolint:all
	v.RegisterValidation("fiatamount", func(fl validator.FieldLevel) bool {
		return utils.IsValidFiatAmount(fl.Field().String())
	})
}

type createSwapRequest struct {
	FiatAmount    string  `json:"fiatAmount" binding:"required,fiatamount"`
	PaymentRail   string  `json:"paymentRail" binding:"required,oneof=mpesa_phone bank_transfer"`
	PhoneNumber   string  `json:"phoneNumber" binding:"omitempty,msisdn"`
	BankName      string  `json:"bankName"`
	AccountNumber string  `json:"accountNumber" binding:"omitempty,accountnumber"`
	AccountName   string  `json:"accountName"`
	ExchangeRate  float64 `json:"exchangeRate" binding:"required,gt=0"`
	AgentMargin   int     `json:"agentMargin" binding:"omitempty,gt=0"`
}

// destination builds the rail-specific details, enforcing the fields
// the chosen rail requires.
func (r createSwapRequest) destination() (domain.DestinationDetails, string) {
	switch domain.PaymentRail(r.PaymentRail) {
	case domain.RailMobileMoney:
		if r.PhoneNumber == "" {
			return nil, "phoneNumber is required for mobile money"
		}
		return domain.MobileMoneyDetails{PhoneNumber: r.PhoneNumber}, ""
	case domain.RailBankTransfer:
		if r.BankName == "" {
			return nil, "bankName is required for bank transfer"
		}
		if r.AccountNumber == "" {
			return nil, "accountNumber is required for bank transfer"
		}
		return domain.BankTransferDetails{
			BankName:      r.BankName,
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
		}, ""
	}
	return nil, "unsupported payment rail"
}

func (s *service) createSwap(c *gin.Context) {
	var req createSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	destination, msg := req.destination()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	swap, err := s.svc.CreateSwap(c.Request.Context(), application.CreateSwapParams{
		FiatAmount:   req.FiatAmount,
		Destination:  destination,
		ExchangeRate: req.ExchangeRate,
		AgentMargin:  req.AgentMargin,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, swapView(*swap))
}

func (s *service) getSwap(c *gin.Context) {
	swap, err := s.svc.GetSwap(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, swapView(*swap))
}

func (s *service) listSwaps(c *gin.Context) {
	filter := application.Filter(c.DefaultQuery("filter", string(application.FilterAll)))
	by := application.Sort(c.DefaultQuery("sort", string(application.SortNewest)))

	records := s.svc.History(c.Request.Context(), filter, by)

	views := make([]gin.H, 0, len(records))
	for _, rec := range records {
		view := swapView(rec.Swap)
		view["savedAt"] = rec.SavedAt
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"data": views, "count": len(views)})
}

func (s *service) removeSwap(c *gin.Context) {
	found, err := s.svc.RemoveFromHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "swap not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *service) clearSwaps(c *gin.Context) {
	if err := s.svc.ClearHistory(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// getRate serves the cached rate for a pair. An optional amount or sats
// query converts in the respective direction at that rate, the way the
// wizard's amount input previews both denominations.
func (s *service) getRate(c *gin.Context) {
	base := minmo.Currency(strings.ToUpper(c.Param("base")))
	target := minmo.Currency(strings.ToUpper(c.Param("target")))

	rate, err := s.svc.RateFor(base, target)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if amount := c.Query("amount"); amount != "" {
		if !utils.IsValidFiatAmount(amount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		sats, err := utils.FiatToSats(amount, rate.Rate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"rate":          rate,
			"fiatAmount":    amount,
			"fiatDisplay":   utils.FormatAmount(amount),
			"satoshiAmount": sats,
		})
		return
	}

	if satsParam := c.Query("sats"); satsParam != "" {
		sats, err := strconv.ParseInt(satsParam, 10, 64)
		if err != nil || sats < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sats"})
			return
		}
		fiat := utils.SatsToFiat(sats, rate.Rate)
		c.JSON(http.StatusOK, gin.H{
			"rate":          rate,
			"fiatAmount":    fiat,
			"fiatDisplay":   utils.FormatAmount(fiat),
			"satoshiAmount": sats,
		})
		return
	}

	c.JSON(http.StatusOK, rate)
}

func (s *service) getBeneficiary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"beneficiaryId": s.svc.BeneficiaryID(c.Request.Context()),
		"swapCount":     s.svc.HistoryCount(c.Request.Context()),
	})
}

func (s *service) resetBeneficiary(c *gin.Context) {
	id, err := s.svc.ResetBeneficiary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"beneficiaryId": id})
}

func (s *service) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":      s.svc.BuildInfo.Version,
		"commit":       s.svc.BuildInfo.Commit,
		"date":         s.svc.BuildInfo.Date,
		"fiatCurrency": s.svc.FiatCurrency(),
	})
}

// swapView decorates a swap snapshot with its derived progress position
// for the wizard's tracking screens.
func swapView(swap minmo.Swap) gin.H {
	step, branch := domain.Advance(domain.State(swap.State))

	view := gin.H{
		"swap":   swap,
		"branch": branchString(branch),
	}
	if branch == domain.BranchInProgress || branch == domain.BranchCompleted {
		view["step"] = int(step)
		view["stepLabel"] = step.String()
	}
	return view
}

func branchString(branch domain.Branch) string {
	switch branch {
	case domain.BranchCompleted:
		return "completed"
	case domain.BranchCancelled:
		return "cancelled"
	case domain.BranchDisputed:
		return "disputed"
	default:
		return "in_progress"
	}
}
