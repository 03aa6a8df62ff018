package reservation

import (
	"time"

	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
)

// Reservation books one piece of equipment for one user over an inclusive
// range of calendar days. UserName and EquipmentName are read-side joins.
type Reservation struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	UserName      string    `json:"user_name" db:"user_name"`
	EquipmentID   int64     `json:"equipment_id" db:"equipment_id"`
	EquipmentName string    `json:"equipment_name" db:"equipment_name"`
	StartDate     time.Time `json:"start_date" db:"start_date"`
	EndDate       time.Time `json:"end_date" db:"end_date"`
	Purpose       *string   `json:"purpose" db:"purpose"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func (r Reservation) Interval() interval.Interval {
	return interval.Interval{Start: interval.Date(r.StartDate), End: interval.Date(r.EndDate)}
}
