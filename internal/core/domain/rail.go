package domain

// PaymentRail is the fiat disbursement channel of a swap. The wire
// values match the paymentChannel identifiers of the swap service.
type PaymentRail string

const (
	RailMobileMoney  PaymentRail = "mpesa_phone"
	RailBankTransfer PaymentRail = "bank_transfer"
)

// DestinationDetails is the payment destination supplied by the sender,
// one variant per rail.
type DestinationDetails interface {
	Rail() PaymentRail
	// Fields returns the wire representation sent as userPaymentDetails.
	Fields() map[string]string
}

type MobileMoneyDetails struct {
	PhoneNumber string
}

func (d MobileMoneyDetails) Rail() PaymentRail { return RailMobileMoney }

func (d MobileMoneyDetails) Fields() map[string]string {
	return map[string]string{"phoneNumber": d.PhoneNumber}
}

type BankTransferDetails struct {
	BankName      string
	AccountNumber string
	AccountName   string
}

func (d BankTransferDetails) Rail() PaymentRail { return RailBankTransfer }

func (d BankTransferDetails) Fields() map[string]string {
	fields := map[string]string{
		"bankName":      d.BankName,
		"accountNumber": d.AccountNumber,
	}
	if d.AccountName != "" {
		fields["accountName"] = d.AccountName
	}
	return fields
}
