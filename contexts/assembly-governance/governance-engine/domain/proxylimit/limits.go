// Package proxylimit enforces the statutory proxy caps (KMK Article 31) and
// validates proxy delegation requests against them.
package proxylimit

import (
	"fmt"

	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"

	"github.com/shopspring/decimal"
)

const (
	smallSiteUnitThreshold = 40
	smallSiteMaxProxies    = 2
)

var capRate = decimal.New(5, -2)

// MaxProxyCount is 5% of the units (floored) for sites above 40 units and a
// fixed 2 otherwise.
func MaxProxyCount(totalUnitCount int) int {
	if totalUnitCount > smallSiteUnitThreshold {
		return totalUnitCount * 5 / 100
	}
	return smallSiteMaxProxies
}

func MaxProxyLandShare(totalLandShare decimal.Decimal) decimal.Decimal {
	return totalLandShare.Mul(capRate)
}

type LimitInput struct {
	CurrentCount      int
	CurrentLandShare  decimal.Decimal
	ProposedCount     int
	ProposedLandShare decimal.Decimal
	TotalUnitCount    int
	TotalLandShare    decimal.Decimal
}

type LimitResult struct {
	CountAfter        int
	MaxCount          int
	LandShareAfter    decimal.Decimal
	MaxLandShare      decimal.Decimal
	CountExceeded     bool
	LandShareExceeded bool
}

// ValidateLimits sums current and proposed delegations and checks each axis
// against its own cap.
func ValidateLimits(in LimitInput) LimitResult {
	result := LimitResult{
		CountAfter:     in.CurrentCount + in.ProposedCount,
		MaxCount:       MaxProxyCount(in.TotalUnitCount),
		LandShareAfter: in.CurrentLandShare.Add(in.ProposedLandShare),
		MaxLandShare:   MaxProxyLandShare(in.TotalLandShare),
	}
	result.CountExceeded = result.CountAfter > result.MaxCount
	result.LandShareExceeded = result.LandShareAfter.GreaterThan(result.MaxLandShare)
	return result
}

func (r LimitResult) Allowed() bool {
	return !r.CountExceeded && !r.LandShareExceeded
}

// Err returns a *ProxyLimitError when any axis is exceeded.
func (r LimitResult) Err(receiverKey string) error {
	if r.Allowed() {
		return nil
	}
	return &domainerrors.ProxyLimitError{
		ReceiverKey:       receiverKey,
		CountExceeded:     r.CountExceeded,
		LandShareExceeded: r.LandShareExceeded,
		CountAfter:        r.CountAfter,
		MaxCount:          r.MaxCount,
		LandShareAfter:    r.LandShareAfter,
		MaxLandShare:      r.MaxLandShare,
	}
}

func (r LimitResult) Message() string {
	if r.Allowed() {
		return fmt.Sprintf("Vekalet limitleri uygun. Sayı: %d/%d, Arsa Payı: %s/%s (KMK 31)",
			r.CountAfter, r.MaxCount, r.LandShareAfter.StringFixed(2), r.MaxLandShare.StringFixed(2))
	}
	message := ""
	if r.CountExceeded {
		message = fmt.Sprintf("Sayı limiti aşıldı! %d/%d (KMK 31)", r.CountAfter, r.MaxCount)
	}
	if r.LandShareExceeded {
		if message != "" {
			message += " "
		}
		message += fmt.Sprintf("Arsa payı limiti aşıldı! %s/%s (KMK 31)",
			r.LandShareAfter.StringFixed(2), r.MaxLandShare.StringFixed(2))
	}
	return message
}
