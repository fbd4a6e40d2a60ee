package proxylimit

import (
	"strings"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// Request is a batch of givers delegating to one receiver within a meeting.
// Units are the site's units; ExistingProxies are the meeting's proxies.
type Request struct {
	Meeting         entities.Meeting
	GiverUnitIDs    []string
	Receiver        entities.Receiver
	Units           []entities.Unit
	ExistingProxies []entities.Proxy
}

// Plan is the admissible part of a request. Skipped givers already delegate
// to the same receiver and are treated as satisfied.
type Plan struct {
	Receiver               entities.Receiver
	Accepted               []entities.Unit
	Skipped                []entities.Unit
	MeetingProxyCount      int
	MeetingProxyLandShare  decimal.Decimal
	ReceiverProxyCount     int
	ReceiverProxyLandShare decimal.Decimal
	Limits                 LimitResult
}

// ValidateRequest checks the hard delegation rules, then the statutory caps
// for the receiver. A non-nil error means nothing in the request may be
// applied; the returned plan still carries whatever diagnostics were computed.
func ValidateRequest(req Request) (Plan, error) {
	plan := Plan{
		MeetingProxyLandShare:  decimal.Zero,
		ReceiverProxyLandShare: decimal.Zero,
	}
	if len(req.GiverUnitIDs) == 0 || req.Receiver.IsZero() {
		return plan, domainerrors.ErrInvalidInput
	}

	index := entities.IndexActiveUnits(req.Units)
	receiver, err := resolveReceiver(req.Receiver, index)
	if err != nil {
		return plan, err
	}
	plan.Receiver = receiver

	receiverUnitID, receiverIsUnit := receiver.UnitID()
	givers := make([]entities.Unit, 0, len(req.GiverUnitIDs))
	seen := make(map[string]struct{}, len(req.GiverUnitIDs))
	for _, raw := range req.GiverUnitIDs {
		giverID := strings.TrimSpace(raw)
		if giverID == "" {
			return plan, domainerrors.ErrInvalidInput
		}
		if receiverIsUnit && giverID == receiverUnitID {
			return plan, domainerrors.ErrSelfDelegation
		}
		if _, dup := seen[giverID]; dup {
			continue
		}
		seen[giverID] = struct{}{}
		giver, ok := index.Lookup(giverID)
		if !ok {
			return plan, domainerrors.ErrUnitNotFound
		}
		givers = append(givers, giver)
	}

	for _, proxy := range req.ExistingProxies {
		share := shareOf(index, proxy.GiverUnitID)
		plan.MeetingProxyCount++
		plan.MeetingProxyLandShare = plan.MeetingProxyLandShare.Add(share)
		if proxy.Receiver.SameAs(receiver) {
			plan.ReceiverProxyCount++
			plan.ReceiverProxyLandShare = plan.ReceiverProxyLandShare.Add(share)
		}
	}

	for _, giver := range givers {
		existing, found := existingDelegation(req.ExistingProxies, giver.UnitID)
		switch {
		case !found:
			plan.Accepted = append(plan.Accepted, giver)
		case existing.Receiver.SameAs(receiver):
			plan.Skipped = append(plan.Skipped, giver)
		default:
			return plan, domainerrors.ErrGiverAlreadyDelegated
		}
	}
	if receiverIsUnit {
		if _, found := existingDelegation(req.ExistingProxies, receiverUnitID); found {
			return plan, domainerrors.ErrGiverAlreadyDelegated
		}
	}

	proposedShare := decimal.Zero
	for _, giver := range plan.Accepted {
		proposedShare = proposedShare.Add(giver.LandShare)
	}
	plan.Limits = ValidateLimits(LimitInput{
		CurrentCount:      plan.MeetingProxyCount + plan.ReceiverProxyCount,
		CurrentLandShare:  plan.MeetingProxyLandShare.Add(plan.ReceiverProxyLandShare),
		ProposedCount:     len(plan.Accepted),
		ProposedLandShare: proposedShare,
		TotalUnitCount:    req.Meeting.TotalUnitCount,
		TotalLandShare:    req.Meeting.TotalSiteLandShare,
	})
	if len(plan.Accepted) == 0 {
		// Every giver already delegates to this receiver; nothing changes.
		return plan, nil
	}
	if err := plan.Limits.Err(receiver.Key()); err != nil {
		return plan, err
	}
	return plan, nil
}

func resolveReceiver(receiver entities.Receiver, index entities.UnitIndex) (entities.Receiver, error) {
	if unitID, ok := receiver.UnitID(); ok {
		if unitID == "" {
			return entities.Receiver{}, domainerrors.ErrInvalidInput
		}
		if _, found := index.Lookup(unitID); !found {
			return entities.Receiver{}, domainerrors.ErrUnitNotFound
		}
		return receiver, nil
	}
	name, phone, _ := receiver.External()
	if name == "" {
		return entities.Receiver{}, domainerrors.ErrInvalidInput
	}
	normalized, ok := NormalizeMobile(phone)
	if !ok {
		return entities.Receiver{}, domainerrors.ErrInvalidReceiverPhone
	}
	return entities.ExternalReceiver(name, normalized), nil
}

func existingDelegation(proxies []entities.Proxy, giverUnitID string) (entities.Proxy, bool) {
	for _, proxy := range proxies {
		if proxy.GiverUnitID == giverUnitID {
			return proxy, true
		}
	}
	return entities.Proxy{}, false
}

func shareOf(index entities.UnitIndex, unitID string) decimal.Decimal {
	unit, ok := index.Lookup(unitID)
	if !ok {
		return decimal.Zero
	}
	return unit.LandShare
}

// ParseReceiver builds a receiver from transport fields. A receiver unit id
// takes precedence; otherwise the name and phone denote an external person.
func ParseReceiver(unitID string, name string, phone string) (entities.Receiver, error) {
	if strings.TrimSpace(unitID) != "" {
		return entities.UnitReceiver(unitID), nil
	}
	if strings.TrimSpace(name) == "" {
		return entities.Receiver{}, domainerrors.ErrInvalidInput
	}
	return entities.ExternalReceiver(name, phone), nil
}
