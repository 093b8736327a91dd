package event

import (
	"encoding/json"
	"fmt"
)

// Type identifies an event kind. It is persisted in the journal.
type Type string

const (
	TypeAddToCart          Type = "cart.add"
	TypeSetQuantity        Type = "cart.set_quantity"
	TypeRemoveLine         Type = "cart.remove"
	TypeSelectDenomination Type = "catalog.select"
	TypeTouch              Type = "session.touch"
)

// Event is a storefront command processed by the sequencer.
type Event interface {
	GetSeq() uint64
	SetSeq(seq uint64)
	GetTs() int64
	SetTs(ts int64)
	GetType() Type
	GetSessionID() string
}

// BaseEvent carries the fields shared by every event.
type BaseEvent struct {
	Seq       uint64 `json:"seq"`
	Ts        int64  `json:"ts"` // unix micros
	SessionID string `json:"session_id"`
}

func (b *BaseEvent) GetSeq() uint64       { return b.Seq }
func (b *BaseEvent) SetSeq(seq uint64)    { b.Seq = seq }
func (b *BaseEvent) GetTs() int64         { return b.Ts }
func (b *BaseEvent) SetTs(ts int64)       { b.Ts = ts }
func (b *BaseEvent) GetSessionID() string { return b.SessionID }

// AddToCartEvent adds one unit of a denomination. LineID is assigned by the
// sequencer when the add creates a new line, so replay reproduces ids.
type AddToCartEvent struct {
	BaseEvent
	Value  int    `json:"value"`
	LineID string `json:"line_id,omitempty"`
}

func (e *AddToCartEvent) GetType() Type { return TypeAddToCart }

// SetQuantityEvent overwrites a line quantity; non-positive removes it.
type SetQuantityEvent struct {
	BaseEvent
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

func (e *SetQuantityEvent) GetType() Type { return TypeSetQuantity }

// RemoveLineEvent deletes a cart line.
type RemoveLineEvent struct {
	BaseEvent
	LineID string `json:"line_id"`
}

func (e *RemoveLineEvent) GetType() Type { return TypeRemoveLine }

// SelectDenominationEvent highlights a catalog denomination.
type SelectDenominationEvent struct {
	BaseEvent
	Value int `json:"value"`
}

func (e *SelectDenominationEvent) GetType() Type { return TypeSelectDenomination }

// TouchEvent creates the session if needed and refreshes its last-seen time.
type TouchEvent struct {
	BaseEvent
}

func (e *TouchEvent) GetType() Type { return TypeTouch }

// Journaled reports whether ev changes cart or selection state. Only
// journaled events consume a sequence number.
func Journaled(ev Event) bool {
	return ev.GetType() != TypeTouch
}

// Encode serialises an event body for the journal.
func Encode(ev Event) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", ev.GetType(), err)
	}
	return string(b), nil
}

// Decode restores an event from its journal type and payload.
func Decode(t Type, payload string) (Event, error) {
	var ev Event
	switch t {
	case TypeAddToCart:
		ev = &AddToCartEvent{}
	case TypeSetQuantity:
		ev = &SetQuantityEvent{}
	case TypeRemoveLine:
		ev = &RemoveLineEvent{}
	case TypeSelectDenomination:
		ev = &SelectDenominationEvent{}
	case TypeTouch:
		ev = &TouchEvent{}
	default:
		return nil, fmt.Errorf("decode: unknown event type %q", t)
	}
	if err := json.Unmarshal([]byte(payload), ev); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return ev, nil
}
