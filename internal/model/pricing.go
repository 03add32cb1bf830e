package model

import "time"

// PriceUnit is the measurement unit of a requested item. UnitOther carries
// a free-text label in the request's CustomUnit field.
type PriceUnit string

const (
	UnitMeter       PriceUnit = "m"
	UnitKilogram    PriceUnit = "kg"
	UnitSquareMeter PriceUnit = "m2"
	UnitCubicMeter  PriceUnit = "m3"
	UnitRoll        PriceUnit = "rollo"
	UnitLiter       PriceUnit = "lts"
	UnitPiece       PriceUnit = "un"
	UnitOther       PriceUnit = "otro"
)

// PriceRequestKind distinguishes what is being priced.
type PriceRequestKind string

const (
	KindService  PriceRequestKind = "Servicio"
	KindRental   PriceRequestKind = "Alquiler"
	KindPurchase PriceRequestKind = "Compra"
)

// PriceRequest is an item Oficina Técnica asks Compras to quote for a
// given obra. OT owns the descriptive fields; Compras fills in the unit
// prices and stamps the update metadata.
type PriceRequest struct {
	ID           string           `json:"id"`
	Description  string           `json:"descripcion"`
	Unit         PriceUnit        `json:"unidad"`
	CustomUnit   string           `json:"unidadPersonalizada,omitempty"`
	Quantity     float64          `json:"cantidad"`
	WorkID       string           `json:"obraDestinoId"`
	Kind         PriceRequestKind `json:"tipo"`
	UnitPriceARS float64          `json:"precioUnitarioARS,omitempty"`
	UnitPriceUSD float64          `json:"precioUnitarioUSD,omitempty"`
	CreatedBy    Role             `json:"createdByOT"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedBy    Role             `json:"lastUpdatedByCompras,omitempty"`
	UpdatedAt    *time.Time       `json:"lastUpdatedAt,omitempty"`
}
