package earnings

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
)

// Month is a calendar month bucket in UTC.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func monthOf(t time.Time) Month {
	t = t.UTC()
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) next() Month {
	return monthOf(m.start().AddDate(0, 1, 0))
}

// Before reports whether m sorts before other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// DesignerMonthEarning is one month of a designer's distribution history.
type DesignerMonthEarning struct {
	Month           Month           `json:"month"`
	OrderCount      int             `json:"order_count"`
	ActiveDesigners int             `json:"active_designers"`
	Share           decimal.Decimal `json:"share"`
	Earning         decimal.Decimal `json:"earning"`
}

// DesignerStatement is one designer's full distribution history.
type DesignerStatement struct {
	StaffID      uuid.UUID              `json:"staff_id"`
	Name         string                 `json:"name"`
	DesignCharge int64                  `json:"design_charge"`
	Months       []DesignerMonthEarning `json:"months"`
	AllTimeTotal decimal.Decimal        `json:"all_time_total"`
	OngoingMonth decimal.Decimal        `json:"ongoing_month"`
}

// DistributeDesignerEarnings recomputes the full designer distribution from
// scratch. Orders arrive pre-filtered: canceled orders are excluded by the
// caller regardless of when they were canceled.
//
// Each calendar month from the earliest designer join through now, every
// active designer (joined on or before the month's end) receives an equal
// share of that month's order count, priced at their own design charge. A
// designer's history starts at their own join month. Deterministic for a
// fixed roster and order history.
func DistributeDesignerEarnings(designers []models.Staff, orderCreatedAts []time.Time, now time.Time) []DesignerStatement {
	if len(designers) == 0 {
		return []DesignerStatement{}
	}

	earliest := monthOf(designers[0].CreatedAt)
	for _, d := range designers[1:] {
		if m := monthOf(d.CreatedAt); m.Before(earliest) {
			earliest = m
		}
	}
	current := monthOf(now)

	ordersByMonth := map[Month]int{}
	for _, createdAt := range orderCreatedAts {
		ordersByMonth[monthOf(createdAt)]++
	}

	months := []Month{}
	for m := earliest; !current.Before(m); m = m.next() {
		months = append(months, m)
	}

	type monthStats struct {
		orders  int
		actives int
		share   decimal.Decimal
	}
	stats := map[Month]monthStats{}
	for _, m := range months {
		endExclusive := m.next().start()
		actives := 0
		for _, d := range designers {
			if d.CreatedAt.UTC().Before(endExclusive) {
				actives++
			}
		}
		share := decimal.Zero
		if actives > 0 {
			share = decimal.NewFromInt(int64(ordersByMonth[m])).Div(decimal.NewFromInt(int64(actives)))
		}
		stats[m] = monthStats{orders: ordersByMonth[m], actives: actives, share: share}
	}

	statements := make([]DesignerStatement, 0, len(designers))
	for _, d := range designers {
		charge := int64(0)
		if d.DesignCharge != nil {
			charge = *d.DesignCharge
		}
		joined := monthOf(d.CreatedAt)

		statement := DesignerStatement{
			StaffID:      d.ID,
			Name:         d.Name,
			DesignCharge: charge,
			Months:       []DesignerMonthEarning{},
			AllTimeTotal: decimal.Zero,
			OngoingMonth: decimal.Zero,
		}
		for _, m := range months {
			if m.Before(joined) {
				continue
			}
			s := stats[m]
			earning := s.share.Mul(decimal.NewFromInt(charge))
			statement.Months = append(statement.Months, DesignerMonthEarning{
				Month:           m,
				OrderCount:      s.orders,
				ActiveDesigners: s.actives,
				Share:           s.share,
				Earning:         earning,
			})
			statement.AllTimeTotal = statement.AllTimeTotal.Add(earning)
		}
		if n := len(statement.Months); n > 0 {
			statement.OngoingMonth = statement.Months[n-1].Earning
		}
		statements = append(statements, statement)
	}

	sort.Slice(statements, func(i, j int) bool {
		return statements[i].Name < statements[j].Name
	})
	return statements
}
