package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationCollection identifies which entity collection a location reference
// points into.
type LocationCollection string

const (
	CollectionCustomer       LocationCollection = "customer"
	CollectionPayingCustomer LocationCollection = "payingCustomer"
	CollectionEmptyPark      LocationCollection = "emptyPark"
	CollectionWharf          LocationCollection = "wharf"
	CollectionWarehouse      LocationCollection = "warehouse"
)

// IsValid checks if the collection is one of the closed set
func (c LocationCollection) IsValid() bool {
	switch c {
	case CollectionCustomer, CollectionPayingCustomer, CollectionEmptyPark,
		CollectionWharf, CollectionWarehouse:
		return true
	default:
		return false
	}
}

// canonical wire tokens, one per collection
var collectionTokens = map[LocationCollection]string{
	CollectionCustomer:       "customers",
	CollectionPayingCustomer: "paying-customers",
	CollectionEmptyPark:      "empty-parks",
	CollectionWharf:          "wharves",
	CollectionWarehouse:      "warehouses",
}

// tokenAliases maps every accepted spelling to its collection. Parsing is
// permissive about singular and camelCase forms; formatting always emits the
// canonical token.
var tokenAliases = map[string]LocationCollection{
	"customers":        CollectionCustomer,
	"customer":         CollectionCustomer,
	"paying-customers": CollectionPayingCustomer,
	"paying-customer":  CollectionPayingCustomer,
	"payingcustomers":  CollectionPayingCustomer,
	"payingcustomer":   CollectionPayingCustomer,
	"empty-parks":      CollectionEmptyPark,
	"empty-park":       CollectionEmptyPark,
	"emptyparks":       CollectionEmptyPark,
	"emptypark":        CollectionEmptyPark,
	"wharves":          CollectionWharf,
	"wharfs":           CollectionWharf,
	"wharf":            CollectionWharf,
	"warehouses":       CollectionWarehouse,
	"warehouse":        CollectionWarehouse,
}

// LocationRef is a polymorphic pointer to one of the five location-bearing
// collections. The zero value means "no location set".
type LocationRef struct {
	Collection LocationCollection `bson:"collection" json:"collection"`
	ID         int64              `bson:"id" json:"id"`
}

// IsZero reports whether the reference is unset
func (r LocationRef) IsZero() bool {
	return r.Collection == "" && r.ID == 0
}

// Equal compares two references by collection and id
func (r LocationRef) Equal(other LocationRef) bool {
	return r.Collection == other.Collection && r.ID == other.ID
}

// String returns the canonical "collection:id" wire form
func (r LocationRef) String() string {
	return FormatLocationRef(r)
}

// MarshalText renders the canonical wire form. The zero reference marshals
// to an empty string.
func (r LocationRef) MarshalText() ([]byte, error) {
	if r.IsZero() {
		return []byte(""), nil
	}
	return []byte(FormatLocationRef(r)), nil
}

// UnmarshalText decodes a "collection:id" string. Malformed input leaves the
// reference unset, matching the parse semantics.
func (r *LocationRef) UnmarshalText(text []byte) error {
	ref := ParseLocationRef(string(text))
	if ref == nil {
		*r = LocationRef{}
		return nil
	}
	*r = *ref
	return nil
}

// FormatLocationRef renders a reference as its canonical "collection:id"
// string. It is the left inverse of ParseLocationRef for every reference
// that parses successfully.
func FormatLocationRef(ref LocationRef) string {
	token, ok := collectionTokens[ref.Collection]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", token, ref.ID)
}

// ParseLocationRef decodes a "collection:id" string or a bare integer string
// into a LocationRef. A bare integer is assigned the customer collection.
// Returns nil on malformed input; callers treat nil as "no location set"
// rather than aborting the surrounding update.
func ParseLocationRef(value string) *LocationRef {
	return ParseLocationRefWithDefault(value, CollectionCustomer)
}

// ParseLocationRefWithDefault decodes a location string, assigning
// defaultCollection to bare integers. The default carries the field context:
// an empty-phase pickup field resolves bare ids into empty parks, a wharf
// field into wharves.
func ParseLocationRefWithDefault(value string, defaultCollection LocationCollection) *LocationRef {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	token := ""
	idPart := value
	if idx := strings.IndexByte(value, ':'); idx >= 0 {
		token = value[:idx]
		idPart = value[idx+1:]
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}

	collection := defaultCollection
	if token != "" {
		c, ok := tokenAliases[strings.ToLower(strings.TrimSpace(token))]
		if !ok {
			return nil
		}
		collection = c
	}

	if !collection.IsValid() {
		return nil
	}

	return &LocationRef{Collection: collection, ID: id}
}

// ParseLocationRefRestricted decodes a location string and additionally
// rejects references outside the allowed collections for the field.
func ParseLocationRefRestricted(value string, defaultCollection LocationCollection, allowed ...LocationCollection) *LocationRef {
	ref := ParseLocationRefWithDefault(value, defaultCollection)
	if ref == nil {
		return nil
	}
	for _, c := range allowed {
		if ref.Collection == c {
			return ref
		}
	}
	return nil
}
