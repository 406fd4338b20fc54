package decision

import (
	"errors"
	"math"
	"time"

	"farm-loan-ledger/internal/domain/loan"
)

var ErrInvalidFrequency = errors.New("invalid repayment frequency")

type Schedule struct {
	EMI         float64
	Periods     int
	NextDueDate time.Time
}

type Calculator struct {
	Now func() time.Time
}

func NewCalculator() *Calculator { return &Calculator{Now: time.Now} }

// Periods per year and days to the first installment.
func terms(f loan.Frequency) (int, int, error) {
	switch f {
	case loan.FrequencyMonthly:
		return 12, 30, nil
	case loan.FrequencyQuarterly:
		return 4, 90, nil
	case loan.FrequencyPostHarvest:
		return 2, 180, nil
	}
	return 0, 0, ErrInvalidFrequency
}

func (c *Calculator) Schedule(principal, annualRate float64, f loan.Frequency) (Schedule, error) {
	n, days, err := terms(f)
	if err != nil {
		return Schedule{}, err
	}
	r := annualRate / float64(n)
	emi := principal * r
	if r != 0 {
		emi = principal * r / (1 - math.Pow(1+r, -float64(n)))
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return Schedule{
		EMI:         emi,
		Periods:     n,
		NextDueDate: now().UTC().AddDate(0, 0, days),
	}, nil
}
