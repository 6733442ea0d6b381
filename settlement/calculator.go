// Package settlement holds the pure money-splitting arithmetic shared by the
// payout and refund flows. All amounts are decimal; conversion to integer
// minor units happens only at the payment-gateway boundary.
package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const Currency = "INR"

var (
	// OwnerShareRate is the share of the base ticket price paid out to the
	// theatre owner. The platform fee is charged on top of the ticket price,
	// so the owner currently receives the full base price.
	//
	// TODO(product): legacy config and comments say the owner share is 88%
	// (LegacyOwnerShareRate) while the implemented rate is 100%. Confirm
	// which is authoritative before changing either constant.
	OwnerShareRate = decimal.NewFromInt(1)

	// LegacyOwnerShareRate is the 88% split referenced by older business
	// rules. It is still used to approximate a ticket price from a gross
	// amount when a booking predates the actual_ticket_price field.
	LegacyOwnerShareRate = decimal.RequireFromString("0.88")

	// platformFeeFactor reflects the 12% platform fee charged on top of the
	// base ticket price.
	platformFeeFactor = decimal.RequireFromString("1.12")
)

var ErrInvalidAmount = errors.New("invalid amount")

// OwnerShare returns the theatre owner's share of a base ticket price.
func OwnerShare(ticketPrice decimal.Decimal) (decimal.Decimal, error) {
	if ticketPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: ticket price %s is negative", ErrInvalidAmount, ticketPrice)
	}

	return ticketPrice.Mul(OwnerShareRate), nil
}

// PlatformProfit is what the platform keeps of the total charged amount once
// the owner's share is paid out.
func PlatformProfit(total, ownerShare decimal.Decimal) decimal.Decimal {
	return total.Sub(ownerShare)
}

// ApproxTicketPrice estimates the base ticket price from a total charged
// amount, assuming the 12% platform fee. The result is an approximation and
// must never be treated as the authoritative ticket price; callers prefer the
// stored actual_ticket_price whenever present.
func ApproxTicketPrice(total decimal.Decimal) decimal.Decimal {
	return total.Div(platformFeeFactor)
}

// MinorUnits converts a display amount into the currency's smallest unit
// (paise for INR), rounding to the nearest integer.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ValidatePositive rejects zero, negative and unset amounts.
func ValidatePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s is not a positive amount", ErrInvalidAmount, amount)
	}

	return nil
}
