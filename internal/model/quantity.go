package model

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// Quantities are the four display numbers for a size, an item or a set of items.
type Quantities struct {
	Original      int `json:"original_quantity"`
	Available     int `json:"available_quantity"`
	InCirculation int `json:"in_circulation"`
	Total         int `json:"total_quantity"`
}

func (q Quantities) add(o Quantities) Quantities {
	return Quantities{
		Original:      q.Original + o.Original,
		Available:     q.Available + o.Available,
		InCirculation: q.InCirculation + o.InCirculation,
		Total:         q.Total + o.Total,
	}
}

// QuantityFault marks a stored counter that was negative and has been clamped
// to zero for display. It always points at a data-integrity problem.
type QuantityFault struct {
	ItemSizeID uuid.UUID `json:"item_size_id"`
	Field      string    `json:"field"`
	Value      int       `json:"value"`
}

func clamp(sizeID uuid.UUID, field string, v int, faults []QuantityFault) (int, []QuantityFault) {
	if v < 0 {
		return 0, append(faults, QuantityFault{ItemSizeID: sizeID, Field: field, Value: v})
	}
	return v, faults
}

// SizeQuantities maps one size row to display quantities. A nil row counts as zero.
func SizeQuantities(size *ItemSize) (Quantities, []QuantityFault) {
	if size == nil {
		return Quantities{}, nil
	}

	var faults []QuantityFault
	var q Quantities
	q.Original, faults = clamp(size.ID, "original_quantity", size.OriginalQuantity, faults)
	q.Available, faults = clamp(size.ID, "available_quantity", size.AvailableQuantity, faults)
	q.InCirculation, faults = clamp(size.ID, "in_circulation", size.InCirculation, faults)
	q.Total = q.Available + q.InCirculation
	return q, faults
}

// ItemQuantities aggregates the sizes of one item.
func ItemQuantities(sizes []*ItemSize) (Quantities, []QuantityFault) {
	var total Quantities
	var faults []QuantityFault
	for _, s := range sizes {
		q, f := SizeQuantities(s)
		total = total.add(q)
		faults = append(faults, f...)
	}
	return total, faults
}

type ItemTotals struct {
	ItemID     uuid.UUID  `json:"item_id"`
	Quantities Quantities `json:"quantities"`
}

// Summary is the "all items" view: per-item totals plus a grand total.
type Summary struct {
	Items  []ItemTotals    `json:"items"`
	Total  Quantities      `json:"total"`
	Faults []QuantityFault `json:"faults,omitempty"`
}

// Summarize groups sizes by item and totals them. Items are ordered by ID so
// repeated calls over the same rows produce identical output.
func Summarize(sizesByItem map[uuid.UUID][]*ItemSize) Summary {
	ids := make([]uuid.UUID, 0, len(sizesByItem))
	for id := range sizesByItem {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareUUID)

	s := Summary{Items: make([]ItemTotals, 0, len(ids))}
	for _, id := range ids {
		q, faults := ItemQuantities(sizesByItem[id])
		s.Items = append(s.Items, ItemTotals{ItemID: id, Quantities: q})
		s.Total = s.Total.add(q)
		s.Faults = append(s.Faults, faults...)
	}
	return s
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

type HoldingKey struct {
	ItemID     uuid.UUID
	ItemSizeID uuid.UUID
}

// Holding is a promoter's net quantity of one item size.
type Holding struct {
	PromoterID uuid.UUID `json:"promoter_id"`
	ItemID     uuid.UUID `json:"item_id"`
	ItemSizeID uuid.UUID `json:"item_size_id"`
	Quantity   int       `json:"quantity"`
}

// HoldingsReducer folds a promoter's ledger rows into net holdings:
// take_out minus return minus burn. Restocks and rows of other promoters are ignored.
type HoldingsReducer struct {
	promoterID uuid.UUID
	net        map[HoldingKey]int
}

func NewHoldingsReducer(promoterID uuid.UUID) *HoldingsReducer {
	return &HoldingsReducer{promoterID: promoterID, net: make(map[HoldingKey]int)}
}

func (r *HoldingsReducer) Add(t *StockTransaction) {
	if t == nil || t.PromoterID == nil || *t.PromoterID != r.promoterID {
		return
	}
	sign := t.Type.HoldingSign()
	if sign == 0 {
		return
	}
	r.net[HoldingKey{ItemID: t.ItemID, ItemSizeID: t.ItemSizeID}] += sign * t.Quantity
}

// Net returns the raw, unclamped net for one item size.
func (r *HoldingsReducer) Net(key HoldingKey) int {
	return r.net[key]
}

// Result returns positive holdings and, separately, the pairs whose net went
// below zero (more returned or burned than taken out). Both are sorted.
func (r *HoldingsReducer) Result() (holdings []Holding, negative []Holding) {
	holdings = []Holding{}
	for key, qty := range r.net {
		h := Holding{PromoterID: r.promoterID, ItemID: key.ItemID, ItemSizeID: key.ItemSizeID, Quantity: qty}
		switch {
		case qty > 0:
			holdings = append(holdings, h)
		case qty < 0:
			negative = append(negative, h)
		}
	}
	slices.SortFunc(holdings, compareHolding)
	slices.SortFunc(negative, compareHolding)
	return holdings, negative
}

func compareHolding(a, b Holding) int {
	if c := compareUUID(a.ItemID, b.ItemID); c != 0 {
		return c
	}
	return compareUUID(a.ItemSizeID, b.ItemSizeID)
}
