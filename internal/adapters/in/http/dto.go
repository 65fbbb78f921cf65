package http

import (
	"time"

	"dispatch/internal/core/application/lifecycle"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type Location struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lon *float64 `json:"lon" validate:"required,longitude"`
}

func (l *Location) toKernel() (*kernel.Location, error) {
	if l == nil {
		return nil, nil
	}
	loc, err := kernel.NewLocation(*l.Lat, *l.Lon)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func locationFrom(loc kernel.Location) *Location {
	lat, lon := loc.Lat(), loc.Lon()
	return &Location{Lat: &lat, Lon: &lon}
}

type Address struct {
	Lat  *float64 `json:"lat" validate:"required,latitude"`
	Lon  *float64 `json:"lon" validate:"required,longitude"`
	Line string   `json:"line" validate:"required"`
}

func (a Address) toDomain() (order.Address, error) {
	loc, err := kernel.NewLocation(*a.Lat, *a.Lon)
	if err != nil {
		return order.Address{}, err
	}
	return order.NewAddress(loc, a.Line)
}

func addressFrom(loc kernel.Location, line string) Address {
	lat, lon := loc.Lat(), loc.Lon()
	return Address{Lat: &lat, Lon: &lon, Line: line}
}

type NewCourier struct {
	Name string `json:"name" validate:"required"`
}

type Presence struct {
	Online   *bool     `json:"online" validate:"required"`
	Location *Location `json:"location,omitempty" validate:"omitempty"`
}

type NewOrder struct {
	CustomerID openapi_types.UUID `json:"customerId" validate:"required"`
	Pickup     Address            `json:"pickup"`
	Dropoff    Address            `json:"dropoff"`
	Price      *int64             `json:"price" validate:"required,gte=0"`
}

type CancelOrder struct {
	RequesterID openapi_types.UUID `json:"requesterId" validate:"required"`
}

type OfferResponse struct {
	CourierID openapi_types.UUID `json:"courierId" validate:"required"`
	Accept    *bool              `json:"accept" validate:"required"`
	Location  *Location          `json:"location,omitempty" validate:"omitempty"`
}

type NewBatch struct {
	CourierID openapi_types.UUID   `json:"courierId" validate:"required"`
	OrderIDs  []openapi_types.UUID `json:"orderIds" validate:"required,min=2,dive,required"`
}

type Created struct {
	ID openapi_types.UUID `json:"id"`
}

type Courier struct {
	ID              openapi_types.UUID  `json:"id"`
	Name            string              `json:"name"`
	Online          bool                `json:"online"`
	Location        *Location           `json:"location,omitempty"`
	PriorityScore   float64             `json:"priorityScore"`
	RejectionsToday int                 `json:"rejectionsToday"`
	WorkUnitKind    string              `json:"workUnitKind,omitempty"`
	WorkUnitID      *openapi_types.UUID `json:"workUnitId,omitempty"`
}

func courierFrom(r queries.GetAllCouriersQueryResponse) Courier {
	c := Courier{
		ID:              r.ID.Bytes(),
		Name:            r.Name,
		Online:          r.Online,
		PriorityScore:   r.PriorityScore,
		RejectionsToday: r.RejectionsToday,
		WorkUnitKind:    r.WorkUnitKind,
		WorkUnitID:      optionalID(r.WorkUnitID),
	}
	if r.Location != nil {
		c.Location = locationFrom(*r.Location)
	}
	return c
}

type CourierOffer struct {
	OfferID            openapi_types.UUID `json:"offerId"`
	OrderID            openapi_types.UUID `json:"orderId"`
	Attempt            int                `json:"attempt"`
	DistanceToPickupKm float64            `json:"distanceToPickupKm"`
	OfferedAt          time.Time          `json:"offeredAt"`
	ExpiresAt          time.Time          `json:"expiresAt"`
	Pickup             Address            `json:"pickup"`
	Dropoff            Address            `json:"dropoff"`
	Price              int64              `json:"price"`
}

func courierOfferFrom(r queries.GetCourierOffersQueryResponse) CourierOffer {
	return CourierOffer{
		OfferID:            r.OfferID.Bytes(),
		OrderID:            r.OrderID.Bytes(),
		Attempt:            r.Attempt,
		DistanceToPickupKm: r.DistanceToPickupKm,
		OfferedAt:          r.OfferedAt,
		ExpiresAt:          r.ExpiresAt,
		Pickup:             addressFrom(r.Pickup, r.PickupLine),
		Dropoff:            addressFrom(r.Dropoff, r.DropoffLine),
		Price:              r.Price,
	}
}

type Order struct {
	ID            openapi_types.UUID  `json:"id"`
	CustomerID    openapi_types.UUID  `json:"customerId"`
	Pickup        Address             `json:"pickup"`
	Dropoff       Address             `json:"dropoff"`
	Price         int64               `json:"price"`
	Status        string              `json:"status"`
	CourierID     *openapi_types.UUID `json:"courierId,omitempty"`
	BatchID       *openapi_types.UUID `json:"batchId,omitempty"`
	BatchSequence int                 `json:"batchSequence,omitempty"`
	ActiveOffers  int                 `json:"activeOffers"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func orderFrom(r queries.GetActiveOrdersQueryResponse) Order {
	return Order{
		ID:            r.ID.Bytes(),
		CustomerID:    r.CustomerID.Bytes(),
		Pickup:        addressFrom(r.Pickup, r.PickupLine),
		Dropoff:       addressFrom(r.Dropoff, r.DropoffLine),
		Price:         r.Price,
		Status:        r.Status,
		CourierID:     optionalID(r.CourierID),
		BatchID:       optionalID(r.BatchID),
		BatchSequence: r.BatchSequence,
		ActiveOffers:  r.ActiveOffers,
		Attempts:      r.Attempts,
		CreatedAt:     r.CreatedAt,
	}
}

type OfferResolution struct {
	OfferID     openapi_types.UUID `json:"offerId"`
	OrderID     openapi_types.UUID `json:"orderId"`
	CourierID   openapi_types.UUID `json:"courierId"`
	Outcome     string             `json:"outcome"`
	Superseded  int                `json:"superseded"`
	RespondedAt time.Time          `json:"respondedAt"`
}

func resolutionFrom(r lifecycle.Result) OfferResolution {
	return OfferResolution{
		OfferID:     r.OfferID.Bytes(),
		OrderID:     r.OrderID.Bytes(),
		CourierID:   r.CourierID.Bytes(),
		Outcome:     r.Outcome.String(),
		Superseded:  r.Superseded,
		RespondedAt: r.RespondedAt,
	}
}

type BatchSuggestion struct {
	OrderIDs            []openapi_types.UUID `json:"orderIds"`
	TotalPrice          int64                `json:"totalPrice"`
	TotalDistanceKm     float64              `json:"totalDistanceKm"`
	AvgPairwisePickupKm float64              `json:"avgPairwisePickupKm"`
}

func suggestionFrom(r queries.GetBatchSuggestionsQueryResponse) BatchSuggestion {
	return BatchSuggestion{
		OrderIDs:            idsFrom(r.OrderIDs),
		TotalPrice:          r.TotalPrice,
		TotalDistanceKm:     r.TotalDistanceKm,
		AvgPairwisePickupKm: r.AvgPairwisePickupKm,
	}
}

type Batch struct {
	ID              openapi_types.UUID   `json:"id"`
	CourierID       openapi_types.UUID   `json:"courierId"`
	OrderIDs        []openapi_types.UUID `json:"orderIds"`
	TotalPrice      int64                `json:"totalPrice"`
	TotalDistanceKm float64              `json:"totalDistanceKm"`
	CreatedAt       time.Time            `json:"createdAt"`
}

func batchFrom(b *batch.Batch) Batch {
	return Batch{
		ID:              b.ID().Bytes(),
		CourierID:       b.CourierID().Bytes(),
		OrderIDs:        idsFrom(b.OrderIDs()),
		TotalPrice:      b.TotalPrice(),
		TotalDistanceKm: b.TotalDistanceKm(),
		CreatedAt:       b.CreatedAt(),
	}
}

type SweepSummary struct {
	Trigger       string `json:"trigger"`
	Mode          string `json:"mode"`
	Expired       int    `json:"expired"`
	TotalOrders   int    `json:"totalOrders"`
	Distributed   int    `json:"distributed"`
	Waiting       int    `json:"waiting"`
	Failed        int    `json:"failed"`
	Errors        int    `json:"errors"`
	OffersCreated int    `json:"offersCreated"`
}

func summaryFrom(trigger string, s commands.SweepSummary) SweepSummary {
	return SweepSummary{
		Trigger:       trigger,
		Mode:          string(s.Mode),
		Expired:       s.Expired,
		TotalOrders:   s.TotalOrders,
		Distributed:   s.Distributed,
		Waiting:       s.Waiting,
		Failed:        s.Failed,
		Errors:        s.Errors,
		OffersCreated: s.OffersCreated,
	}
}

func optionalID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	out := openapi_types.UUID(id.Bytes())
	return &out
}

func idsFrom(ids []kernel.UUID) []openapi_types.UUID {
	out := make([]openapi_types.UUID, len(ids))
	for i, id := range ids {
		out[i] = id.Bytes()
	}
	return out
}

func idsToKernel(ids []openapi_types.UUID) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, len(ids))
	for i, id := range ids {
		parsed, err := kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}
