package reservation

import (
	"fmt"
	"strings"
	"time"
)

// RangeMode selects how Filter.From and Filter.To are matched against a reservation.
type RangeMode int

const (
	// NoRange ignores From and To.
	NoRange RangeMode = iota
	// ViewRange is the calendar query: From is inclusive, To is exclusive, and
	// the range only applies when both bounds are set.
	ViewRange
	// InclusiveRange is the statistics query: both bounds are inclusive and
	// each one applies on its own.
	InclusiveRange
)

func (m RangeMode) String() string {
	switch m {
	case ViewRange:
		return "view_range"
	case InclusiveRange:
		return "inclusive_range"
	default:
		return "none"
	}
}

type Filter struct {
	Mode         RangeMode
	From         *time.Time
	To           *time.Time
	EquipmentIDs []int64
	UserIDs      []int64
}

// where renders the filter as a SQL condition over alias r with positional args.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	switch f.Mode {
	case ViewRange:
		if f.From != nil && f.To != nil {
			add("r.start_date < $%d", *f.To)
			add("r.end_date >= $%d", *f.From)
		}
	case InclusiveRange:
		if f.From != nil {
			add("r.end_date >= $%d", *f.From)
		}
		if f.To != nil {
			add("r.start_date <= $%d", *f.To)
		}
	}

	if len(f.EquipmentIDs) > 0 {
		add("r.equipment_id = ANY($%d)", f.EquipmentIDs)
	}
	if len(f.UserIDs) > 0 {
		add("r.user_id = ANY($%d)", f.UserIDs)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
