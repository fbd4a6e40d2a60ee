package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Site is the property whose total land share is the legal whole every
// ratio is measured against.
type Site struct {
	SiteID         string
	Name           string
	Address        string
	TotalLandShare decimal.Decimal
	IsActive       bool
	CreatedAt      time.Time
}

// Unit is one independent section of a site. Inactive units are soft-deleted
// and never take part in ratio computations.
type Unit struct {
	UnitID    string
	SiteID    string
	Number    string
	Block     string
	OwnerName string
	Phone     string
	Email     string
	LandShare decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
}

// Label is the unit number used in official text, falling back to the id.
func (u Unit) Label() string {
	if number := strings.TrimSpace(u.Number); number != "" {
		return number
	}
	return strings.TrimSpace(u.UnitID)
}

// UnitIndex maps unit ids to units. Only active units are indexed.
type UnitIndex map[string]Unit

func IndexActiveUnits(units []Unit) UnitIndex {
	index := make(UnitIndex, len(units))
	for _, unit := range units {
		if !unit.IsActive {
			continue
		}
		index[strings.TrimSpace(unit.UnitID)] = unit
	}
	return index
}

func (idx UnitIndex) Lookup(unitID string) (Unit, bool) {
	unit, ok := idx[strings.TrimSpace(unitID)]
	return unit, ok
}

// TotalLandShare sums the land share of every indexed unit.
func (idx UnitIndex) TotalLandShare() decimal.Decimal {
	total := decimal.Zero
	for _, unit := range idx {
		total = total.Add(unit.LandShare)
	}
	return total
}
