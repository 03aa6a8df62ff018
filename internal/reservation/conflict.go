package reservation

import "github.com/vasiliy-maslov/equipment-reservations/internal/interval"

// FindConflict returns the first reservation in existing that books
// equipmentID on a day covered by candidate. The reservation with id
// excludeID is never returned; pass 0 to exclude nothing.
func FindConflict(existing []Reservation, equipmentID int64, candidate interval.Interval, excludeID int64) *Reservation {
	for i := range existing {
		r := &existing[i]
		if r.EquipmentID != equipmentID {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if interval.Overlaps(r.Interval(), candidate) {
			return r
		}
	}
	return nil
}
