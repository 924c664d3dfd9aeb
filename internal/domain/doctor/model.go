package doctor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// slotCatalog is the fixed daily grid of bookable hours. A doctor's
// available_times is always a subset of this list, in this order.
var slotCatalog = []string{
	"09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00",
}

// SlotCatalog returns a copy of the fixed daily slot grid.
func SlotCatalog() []string {
	out := make([]string, len(slotCatalog))
	copy(out, slotCatalog)
	return out
}

// ValidSlot reports whether label is a member of the fixed catalog.
func ValidSlot(label string) bool {
	for _, s := range slotCatalog {
		if s == label {
			return true
		}
	}
	return false
}

// SlotHour parses the hour component of a slot label ("14:00" -> 14).
func SlotHour(label string) (int, error) {
	parts := strings.SplitN(label, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed slot label %q", label)
	}
	return strconv.Atoi(parts[0])
}

// Period is a coarse morning/afternoon filter on offered slots.
type Period string

const (
	PeriodAM Period = "am"
	PeriodPM Period = "pm"
)

// ParsePeriod converts a query value into a Period. Empty input means no
// period filter.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "am":
		return PeriodAM, nil
	case "pm":
		return PeriodPM, nil
	default:
		return "", fmt.Errorf("period must be AM or PM, got %q", s)
	}
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialty      string    `db:"specialty" json:"specialty"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Phone          string    `db:"phone" json:"phone"`
	AvailableTimes []string  `db:"available_times" json:"available_times"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OffersSlot reports whether the doctor has opted into the given slot.
func (d *Doctor) OffersSlot(label string) bool {
	for _, s := range d.AvailableTimes {
		if s == label {
			return true
		}
	}
	return false
}

// OfferedSlots returns the doctor's offered slots intersected with the
// catalog, in catalog order. Labels outside the catalog are dropped.
func (d *Doctor) OfferedSlots() []string {
	var out []string
	for _, s := range slotCatalog {
		if d.OffersSlot(s) {
			out = append(out, s)
		}
	}
	return out
}

// MatchesPeriod reports whether any offered slot falls in the given period.
// A doctor offering both morning and afternoon slots matches both periods.
func (d *Doctor) MatchesPeriod(p Period) bool {
	if p == "" {
		return true
	}
	for _, s := range d.AvailableTimes {
		hour, err := SlotHour(s)
		if err != nil {
			continue
		}
		if (p == PeriodAM && hour < 12) || (p == PeriodPM && hour >= 12) {
			return true
		}
	}
	return false
}
