package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationRef(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *LocationRef
	}{
		{
			name:  "canonical customer token",
			value: "customers:5",
			want:  &LocationRef{Collection: CollectionCustomer, ID: 5},
		},
		{
			name:  "singular alias",
			value: "customer:5",
			want:  &LocationRef{Collection: CollectionCustomer, ID: 5},
		},
		{
			name:  "canonical empty park token",
			value: "empty-parks:2",
			want:  &LocationRef{Collection: CollectionEmptyPark, ID: 2},
		},
		{
			name:  "camelCase empty park alias",
			value: "emptyPark:2",
			want:  &LocationRef{Collection: CollectionEmptyPark, ID: 2},
		},
		{
			name:  "paying customer alias",
			value: "payingCustomer:11",
			want:  &LocationRef{Collection: CollectionPayingCustomer, ID: 11},
		},
		{
			name:  "wharfs alias",
			value: "wharfs:4",
			want:  &LocationRef{Collection: CollectionWharf, ID: 4},
		},
		{
			name:  "warehouse singular",
			value: "warehouse:3",
			want:  &LocationRef{Collection: CollectionWarehouse, ID: 3},
		},
		{
			name:  "bare integer defaults to customer",
			value: "7",
			want:  &LocationRef{Collection: CollectionCustomer, ID: 7},
		},
		{
			name:  "surrounding whitespace",
			value: "  customers:5  ",
			want:  &LocationRef{Collection: CollectionCustomer, ID: 5},
		},
		{
			name:  "unknown collection token",
			value: "privateyard:12",
			want:  nil,
		},
		{
			name:  "non-numeric id",
			value: "customers:abc",
			want:  nil,
		},
		{
			name:  "zero id",
			value: "customers:0",
			want:  nil,
		},
		{
			name:  "negative id",
			value: "customers:-3",
			want:  nil,
		},
		{
			name:  "empty string",
			value: "",
			want:  nil,
		},
		{
			name:  "token without id",
			value: "customers:",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocationRef(tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocationRefWithDefault(t *testing.T) {
	ref := ParseLocationRefWithDefault("9", CollectionEmptyPark)
	require.NotNil(t, ref)
	assert.Equal(t, CollectionEmptyPark, ref.Collection)
	assert.Equal(t, int64(9), ref.ID)

	// explicit tokens win over the field default
	ref = ParseLocationRefWithDefault("warehouses:9", CollectionEmptyPark)
	require.NotNil(t, ref)
	assert.Equal(t, CollectionWarehouse, ref.Collection)
}

func TestParseLocationRefRestricted(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *LocationRef
	}{
		{
			name:  "allowed collection",
			value: "empty-parks:1",
			want:  &LocationRef{Collection: CollectionEmptyPark, ID: 1},
		},
		{
			name:  "bare id resolves into the allowed default",
			value: "1",
			want:  &LocationRef{Collection: CollectionEmptyPark, ID: 1},
		},
		{
			name:  "disallowed collection",
			value: "customers:1",
			want:  nil,
		},
		{
			name:  "malformed input",
			value: "nowhere:1",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocationRefRestricted(tt.value, CollectionEmptyPark, CollectionEmptyPark)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLocationRef(t *testing.T) {
	tests := []struct {
		name string
		ref  LocationRef
		want string
	}{
		{"customer", LocationRef{CollectionCustomer, 5}, "customers:5"},
		{"paying customer", LocationRef{CollectionPayingCustomer, 8}, "paying-customers:8"},
		{"empty park", LocationRef{CollectionEmptyPark, 2}, "empty-parks:2"},
		{"wharf", LocationRef{CollectionWharf, 4}, "wharves:4"},
		{"warehouse", LocationRef{CollectionWarehouse, 3}, "warehouses:3"},
		{"unknown collection", LocationRef{"depot", 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLocationRef(tt.ref))
		})
	}
}

func TestLocationRefRoundTrip(t *testing.T) {
	// format is the left inverse of parse for every parseable value
	collections := []LocationCollection{
		CollectionCustomer,
		CollectionPayingCustomer,
		CollectionEmptyPark,
		CollectionWharf,
		CollectionWarehouse,
	}

	for _, collection := range collections {
		for _, id := range []int64{1, 42, 99999} {
			ref := LocationRef{Collection: collection, ID: id}
			parsed := ParseLocationRef(FormatLocationRef(ref))
			require.NotNil(t, parsed, "collection %s id %d", collection, id)
			assert.Equal(t, ref, *parsed)
		}
	}
}

func TestLocationRefMarshalText(t *testing.T) {
	text, err := LocationRef{Collection: CollectionWharf, ID: 4}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "wharves:4", string(text))

	text, err = LocationRef{}.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, string(text))
}

func TestLocationRefUnmarshalText(t *testing.T) {
	var ref LocationRef
	require.NoError(t, ref.UnmarshalText([]byte("empty-parks:2")))
	assert.Equal(t, LocationRef{Collection: CollectionEmptyPark, ID: 2}, ref)

	// malformed input resets to the zero ref instead of failing
	require.NoError(t, ref.UnmarshalText([]byte("privateyard:12")))
	assert.True(t, ref.IsZero())
}

func TestLocationRefJSONRoundTrip(t *testing.T) {
	ref := LocationRef{Collection: CollectionPayingCustomer, ID: 7}

	data, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.Equal(t, `"paying-customers:7"`, string(data))

	var decoded LocationRef
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ref, decoded)
}

func TestLocationRefIsZero(t *testing.T) {
	assert.True(t, LocationRef{}.IsZero())
	assert.False(t, LocationRef{Collection: CollectionCustomer, ID: 1}.IsZero())
}

func TestLocationRefEqual(t *testing.T) {
	a := LocationRef{CollectionCustomer, 5}
	assert.True(t, a.Equal(LocationRef{CollectionCustomer, 5}))
	assert.False(t, a.Equal(LocationRef{CollectionCustomer, 6}))
	assert.False(t, a.Equal(LocationRef{CollectionWarehouse, 5}))
}
