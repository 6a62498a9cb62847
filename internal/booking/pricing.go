package booking

import (
	"errors"

	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

// ComputeTotal prices a stay at a fixed nightly rate. Amounts are whole cents,
// so the product is already rounded to two decimals.
func ComputeTotal(pricePerNight money.Amount, stay DateRange) (money.Amount, error) {
	total, err := pricePerNight.Times(stay.Nights())
	if errors.Is(err, money.ErrOverflow) {
		return 0, ErrTotalOutOfRange
	}
	return total, err
}
