package domain

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type Kind string

const (
	KindOrder          Kind = "order"
	KindServiceRequest Kind = "service_request"
	KindRental         Kind = "rental"
)

var (
	ErrMissingReference   = errors.New("missing_fulfillment_reference")
	ErrAmbiguousReference = errors.New("ambiguous_fulfillment_reference")
	ErrInvalidReference   = errors.New("invalid_fulfillment_reference")
	ErrEntityNotFound     = errors.New("fulfillment_entity_not_found")
)

// Ref identifies exactly one fulfillment entity. The zero value is invalid;
// construct through OrderRef, ServiceRequestRef, RentalRef or ParseRef, which
// makes the "neither or both" states of an event unrepresentable.
type Ref struct {
	kind Kind
	id   snowflake.ID
}

func OrderRef(id snowflake.ID) Ref          { return Ref{kind: KindOrder, id: id} }
func ServiceRequestRef(id snowflake.ID) Ref { return Ref{kind: KindServiceRequest, id: id} }
func RentalRef(id snowflake.ID) Ref         { return Ref{kind: KindRental, id: id} }

func (r Ref) Kind() Kind       { return r.kind }
func (r Ref) ID() snowflake.ID { return r.id }
func (r Ref) IsZero() bool     { return r.kind == "" || r.id == 0 }

// ParseRef builds a Ref from the raw id fields of an incoming event, enforcing
// that exactly one of them is set.
func ParseRef(orderID, serviceRequestID, rentalID string) (Ref, error) {
	orderID = strings.TrimSpace(orderID)
	serviceRequestID = strings.TrimSpace(serviceRequestID)
	rentalID = strings.TrimSpace(rentalID)

	set := 0
	for _, raw := range []string{orderID, serviceRequestID, rentalID} {
		if raw != "" {
			set++
		}
	}
	if set == 0 {
		return Ref{}, ErrMissingReference
	}
	if set > 1 {
		return Ref{}, ErrAmbiguousReference
	}

	switch {
	case orderID != "":
		return parseAs(KindOrder, orderID)
	case serviceRequestID != "":
		return parseAs(KindServiceRequest, serviceRequestID)
	default:
		return parseAs(KindRental, rentalID)
	}
}

func parseAs(kind Kind, raw string) (Ref, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return Ref{}, ErrInvalidReference
	}
	return Ref{kind: kind, id: id}, nil
}
