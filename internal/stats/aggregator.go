// Package stats computes per-equipment and per-user usage over a reporting
// period and renders it for export.
package stats

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

// undefinedDays is how an undefined DayCount is rendered.
const undefinedDays = "N/A"

// DayCount is a number of days that may be undefined, as the length of a
// period with an open bound is. The zero value is undefined.
type DayCount struct {
	n       int
	defined bool
}

func Days(n int) DayCount { return DayCount{n: n, defined: true} }

func Undefined() DayCount { return DayCount{} }

func (d DayCount) Value() (int, bool) { return d.n, d.defined }

func (d DayCount) String() string {
	if !d.defined {
		return undefinedDays
	}
	return strconv.Itoa(d.n)
}

func (d DayCount) MarshalJSON() ([]byte, error) {
	if !d.defined {
		return json.Marshal(undefinedDays)
	}
	return json.Marshal(d.n)
}

// Period is the reporting window. A nil bound is open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// TotalDays is the inclusive length of the period, undefined unless both
// bounds are set.
func (p Period) TotalDays() DayCount {
	if p.Start == nil || p.End == nil {
		return Undefined()
	}
	return Days(interval.DaysBetween(*p.Start, *p.End) + 1)
}

// clip returns the part of iv inside the period, taking an open bound to be
// iv's own.
func (p Period) clip(iv interval.Interval) interval.Interval {
	bounds := iv
	if p.Start != nil {
		bounds.Start = interval.Date(*p.Start)
	}
	if p.End != nil {
		bounds.End = interval.Date(*p.End)
	}
	return bounds
}

type EquipmentUsage struct {
	UsedDays    int            `json:"used_days"`
	NotUsedDays DayCount       `json:"not_used_days"`
	Users       map[string]int `json:"users"`
}

type UserUsage struct {
	UsedDays  int            `json:"used_days"`
	Equipment map[string]int `json:"equipment"`
}

// Report is the usage over one period, keyed by equipment and user names.
type Report struct {
	Period         Period
	TotalDays      DayCount
	EquipmentUsage map[string]*EquipmentUsage
	UserUsage      map[string]*UserUsage

	equipmentOrder []string
	userOrder      []string
}

// EquipmentNames lists the equipment in the order it was added to the report.
func (r *Report) EquipmentNames() []string { return r.equipmentOrder }

// UserNames lists the users in the order they were added to the report.
func (r *Report) UserNames() []string { return r.userOrder }

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PeriodStart    *string                    `json:"period_start"`
		PeriodEnd      *string                    `json:"period_end"`
		TotalDays      DayCount                   `json:"total_days_in_period"`
		EquipmentUsage map[string]*EquipmentUsage `json:"equipment_usage"`
		UserUsage      map[string]*UserUsage      `json:"user_usage"`
	}{
		PeriodStart:    formatDate(r.Period.Start),
		PeriodEnd:      formatDate(r.Period.End),
		TotalDays:      r.TotalDays,
		EquipmentUsage: r.EquipmentUsage,
		UserUsage:      r.UserUsage,
	})
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := interval.Format(*t)
	return &s
}

func (r *Report) equipment(name string) *EquipmentUsage {
	if u, ok := r.EquipmentUsage[name]; ok {
		return u
	}
	u := &EquipmentUsage{NotUsedDays: r.TotalDays, Users: map[string]int{}}
	r.EquipmentUsage[name] = u
	r.equipmentOrder = append(r.equipmentOrder, name)
	return u
}

func (r *Report) user(name string) *UserUsage {
	if u, ok := r.UserUsage[name]; ok {
		return u
	}
	u := &UserUsage{Equipment: map[string]int{}}
	r.UserUsage[name] = u
	r.userOrder = append(r.userOrder, name)
	return u
}

// Aggregate sums the days each reservation spends inside period. reservations
// is expected to be filtered already; every listed equipment and user appears
// in the report even without usage, and names seen only on reservations are
// added on first use.
func Aggregate(period Period, reservations []reservation.Reservation, allEquipment []equipment.Equipment, allUsers []user.User) *Report {
	report := &Report{
		Period:         period,
		TotalDays:      period.TotalDays(),
		EquipmentUsage: make(map[string]*EquipmentUsage, len(allEquipment)),
		UserUsage:      make(map[string]*UserUsage, len(allUsers)),
	}
	for _, e := range allEquipment {
		report.equipment(e.Name)
	}
	for _, u := range allUsers {
		report.user(u.Name)
	}

	for _, res := range reservations {
		iv := res.Interval()
		days := interval.OverlapLength(iv, period.clip(iv))
		if days == 0 {
			continue
		}

		eq := report.equipment(res.EquipmentName)
		eq.UsedDays += days
		eq.Users[res.UserName] += days

		us := report.user(res.UserName)
		us.UsedDays += days
		us.Equipment[res.EquipmentName] += days
	}

	if total, ok := report.TotalDays.Value(); ok {
		for _, eq := range report.EquipmentUsage {
			eq.NotUsedDays = Days(total - eq.UsedDays)
		}
	}
	return report
}
