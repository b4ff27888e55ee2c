package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-platform/booking-service/internal/domain"
)

func TestLocationValueUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *domain.LocationRef
	}{
		{
			name:    "collection string",
			payload: `{"from": "wharves:4"}`,
			want:    &domain.LocationRef{Collection: domain.CollectionWharf, ID: 4},
		},
		{
			name:    "bare number takes the field default",
			payload: `{"from": 12}`,
			want:    &domain.LocationRef{Collection: domain.CollectionCustomer, ID: 12},
		},
		{
			name:    "numeric string takes the field default",
			payload: `{"from": "12"}`,
			want:    &domain.LocationRef{Collection: domain.CollectionCustomer, ID: 12},
		},
		{
			name:    "unknown token resolves to unset",
			payload: `{"from": "privateyard:12"}`,
			want:    nil,
		},
		{
			name:    "null resolves to unset",
			payload: `{"from": null}`,
			want:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body struct {
				From LocationValue `json:"from"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &body))
			assert.Equal(t, tc.want, body.From.Ref(domain.CollectionCustomer))
		})
	}
}

func TestLocationValueAbsentField(t *testing.T) {
	var body struct {
		From LocationValue `json:"from"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.From.IsSet())
	assert.Nil(t, body.From.Ref(domain.CollectionCustomer))
}

func TestLocationValueRefRestricted(t *testing.T) {
	var body struct {
		Pickup LocationValue `json:"pickup"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"pickup": "customers:5"}`), &body))

	// a disallowed collection is treated as unset, not substituted
	assert.Nil(t, body.Pickup.RefRestricted(domain.CollectionEmptyPark, domain.CollectionEmptyPark))

	require.NoError(t, json.Unmarshal([]byte(`{"pickup": 3}`), &body))
	ref := body.Pickup.RefRestricted(domain.CollectionEmptyPark, domain.CollectionEmptyPark)
	require.NotNil(t, ref)
	assert.Equal(t, domain.LocationRef{Collection: domain.CollectionEmptyPark, ID: 3}, *ref)
}

func TestRelationIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int64
	}{
		{name: "number", payload: `{"vesselId": 77}`, want: 77},
		{name: "numeric string", payload: `{"vesselId": "77"}`, want: 77},
		{name: "embedded relation object", payload: `{"vesselId": {"id": 77}}`, want: 77},
		{name: "unparseable string resolves to unset", payload: `{"vesselId": "MV Aurora"}`, want: 0},
		{name: "null resolves to unset", payload: `{"vesselId": null}`, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body struct {
				VesselID RelationID `json:"vesselId"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &body))
			assert.Equal(t, tc.want, body.VesselID.Int64())
		})
	}
}

func TestRoutingPhaseRequestToDomain(t *testing.T) {
	payload := `{
		"shippingLineId": {"id": 44},
		"pickup": 2,
		"via": ["warehouses:3", "privateyard:9"],
		"dropoff": "customers:7",
		"legs": [
			{"from": "empty-parks:2", "to": "warehouses:3"},
			{"from": "warehouses:3", "to": "customers:7"}
		]
	}`
	var req RoutingPhaseRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	phase := req.ToDomain(domain.PhaseEmpty)
	assert.Equal(t, int64(44), phase.ShippingLineID)
	require.NotNil(t, phase.Pickup)
	assert.Equal(t, domain.LocationRef{Collection: domain.CollectionEmptyPark, ID: 2}, *phase.Pickup)
	require.Len(t, phase.Via, 1, "unresolvable via stops are dropped")
	assert.Equal(t, domain.LocationRef{Collection: domain.CollectionWarehouse, ID: 3}, phase.Via[0])
	require.NotNil(t, phase.Dropoff)
	assert.Equal(t, domain.LocationRef{Collection: domain.CollectionCustomer, ID: 7}, *phase.Dropoff)
	require.Len(t, phase.Legs, 2)
	assert.Equal(t, domain.Leg{
		From: domain.LocationRef{Collection: domain.CollectionEmptyPark, ID: 2},
		To:   domain.LocationRef{Collection: domain.CollectionWarehouse, ID: 3},
	}, phase.Legs[0])
}

func TestListBookingsQueryPagination(t *testing.T) {
	q := ListBookingsQuery{Page: 3, PageSize: 50}
	p := q.Pagination()
	assert.Equal(t, int64(3), p.Page)
	assert.Equal(t, int64(50), p.PageSize)

	p = (&ListBookingsQuery{}).Pagination()
	assert.Equal(t, domain.DefaultPagination(), p)
}
