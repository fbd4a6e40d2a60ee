package entities

import (
	"sort"
	"strings"
	"time"
)

type ReceiverKind string

const (
	ReceiverKindUnit     ReceiverKind = "unit"
	ReceiverKindExternal ReceiverKind = "external"
)

// Receiver is the party a proxy is delegated to: either another unit of the
// same site or a named external person. The zero value is not a valid
// receiver; build one with UnitReceiver or ExternalReceiver.
type Receiver struct {
	kind   ReceiverKind
	unitID string
	name   string
	phone  string
}

func UnitReceiver(unitID string) Receiver {
	return Receiver{kind: ReceiverKindUnit, unitID: strings.TrimSpace(unitID)}
}

func ExternalReceiver(name string, phone string) Receiver {
	return Receiver{
		kind:  ReceiverKindExternal,
		name:  strings.TrimSpace(name),
		phone: strings.TrimSpace(phone),
	}
}

func (r Receiver) Kind() ReceiverKind {
	return r.kind
}

func (r Receiver) IsZero() bool {
	return r.kind == ""
}

func (r Receiver) UnitID() (string, bool) {
	if r.kind != ReceiverKindUnit {
		return "", false
	}
	return r.unitID, true
}

func (r Receiver) External() (name string, phone string, ok bool) {
	if r.kind != ReceiverKindExternal {
		return "", "", false
	}
	return r.name, r.phone, true
}

// Key identifies the receiver for per-receiver cap accounting.
func (r Receiver) Key() string {
	switch r.kind {
	case ReceiverKindUnit:
		return "unit:" + r.unitID
	case ReceiverKindExternal:
		return "external:" + strings.ToLower(r.name) + "|" + r.phone
	default:
		return ""
	}
}

// SameAs reports whether two receivers denote the same party. External
// receivers match on name; a missing phone on either side matches any phone.
func (r Receiver) SameAs(other Receiver) bool {
	if r.kind != other.kind {
		return false
	}
	switch r.kind {
	case ReceiverKindUnit:
		return r.unitID == other.unitID
	case ReceiverKindExternal:
		if !strings.EqualFold(r.name, other.name) {
			return false
		}
		return r.phone == "" || other.phone == "" || r.phone == other.phone
	default:
		return false
	}
}

// Proxy delegates one giver unit's attendance and voting right for a single
// meeting.
type Proxy struct {
	ProxyID     string
	MeetingID   string
	GiverUnitID string
	Receiver    Receiver
	CreatedAt   time.Time
}

// SortProxies orders proxies by creation time, then id.
func SortProxies(items []Proxy) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ProxyID < items[j].ProxyID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
