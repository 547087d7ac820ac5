// Package analytics computes derived financial and temporal views over an
// in-memory subscription set. Every function is pure and synchronous; the
// numbers are identical regardless of which backend produced the input.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/subtrack/internal/models"
)

var twelve = decimal.NewFromInt(12)

// monthlyShare normalizes one subscription's cost to its per-month share:
// monthly cost as-is, annual cost divided by twelve.
func monthlyShare(s models.Subscription) decimal.Decimal {
	if s.Cycle == models.CycleAnnually {
		return s.Cost.Div(twelve)
	}
	return s.Cost
}

// MonthlyTotal sums the monthly-equivalent cost over active subscriptions.
// Trial subscriptions are excluded entirely regardless of cycle.
func MonthlyTotal(subs []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if s.Status != models.StatusActive {
			continue
		}
		total = total.Add(monthlyShare(s))
	}
	return total
}

// CategoryTotals returns the monthly-equivalent cost per category. The
// result always contains every category of the fixed five-value enum, so
// zero-valued categories are present and can be filtered at the
// presentation layer.
func CategoryTotals(subs []models.Subscription) map[models.Category]decimal.Decimal {
	totals := make(map[models.Category]decimal.Decimal, len(models.Categories()))
	for _, c := range models.Categories() {
		totals[c] = decimal.Zero
	}
	for _, s := range subs {
		if s.Status != models.StatusActive {
			continue
		}
		totals[s.Category] = totals[s.Category].Add(monthlyShare(s))
	}
	return totals
}

// RenewalsWithin selects active subscriptions whose renewal date, normalized
// to midnight, falls in [today, today+days], inclusive on both ends, sorted
// ascending by renewal date. The sort is stable: subscriptions renewing on
// the same date keep their input order.
func RenewalsWithin(subs []models.Subscription, today time.Time, days int) []models.Subscription {
	from := models.NormalizeDate(today)
	to := from.AddDate(0, 0, days)

	result := make([]models.Subscription, 0)
	for _, s := range subs {
		if s.Status != models.StatusActive {
			continue
		}
		d := models.NormalizeDate(s.RenewalDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		result = append(result, s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RenewalDate.Before(result[j].RenewalDate)
	})
	return result
}

// MonthlyRenewalAmount sums active subscriptions whose stored renewal date
// falls within the given calendar month: monthly-cycle subscriptions at full
// cost, annual-cycle subscriptions at one twelfth. Only the single stored
// date is consulted; a monthly subscription whose stored date lies in a
// different month contributes nothing, even though it also renews in the
// target month. That asymmetry is part of the behavior this layer
// reproduces, not something to be corrected here.
func MonthlyRenewalAmount(subs []models.Subscription, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if s.Status != models.StatusActive {
			continue
		}
		d := models.NormalizeDate(s.RenewalDate)
		if d.Year() != year || d.Month() != month {
			continue
		}
		if s.Cycle == models.CycleAnnually {
			total = total.Add(s.Cost.Div(twelve))
		} else {
			total = total.Add(s.Cost)
		}
	}
	return total
}
