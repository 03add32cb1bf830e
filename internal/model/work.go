package model

import "time"

// WorkState is the lifecycle state of a tracked obra.
type WorkState string

const (
	WorkStateNoData         WorkState = "No se tienen datos"
	WorkStateTendering      WorkState = "En Licitación"
	WorkStateAwarded        WorkState = "Adjudicada"
	WorkStateInProgress     WorkState = "En Ejecución"
	WorkStateAwardedToOther WorkState = "Adjudicada a otra Empresa"
	WorkStateFinished       WorkState = "Finalizada"
	WorkStateNotTendered    WorkState = "No se licitó"
	WorkStateUpdated        WorkState = "Actualizada"
)

// AllWorkStates lists the valid obra states.
var AllWorkStates = []WorkState{
	WorkStateNoData,
	WorkStateTendering,
	WorkStateAwarded,
	WorkStateInProgress,
	WorkStateAwardedToOther,
	WorkStateFinished,
	WorkStateNotTendered,
	WorkStateUpdated,
}

// IsValid reports whether s is one of the known obra states.
func (s WorkState) IsValid() bool {
	for _, state := range AllWorkStates {
		if s == state {
			return true
		}
	}
	return false
}

// ValidityUnit is the unit of an offer's validity term.
type ValidityUnit string

const (
	ValidityDays   ValidityUnit = "días"
	ValidityMonths ValidityUnit = "meses"
	ValidityYears  ValidityUnit = "años"
)

// Work is an obra tracked by Oficina Técnica: a tender the company was
// invited to, possibly awarded and executed. Dates are "YYYY-MM-DD".
type Work struct {
	ID                string       `json:"id"`
	Name              string       `json:"nombre_obra"`
	Location          string       `json:"ubicacion"`
	Client            string       `json:"comitente"`
	IsUTE             bool         `json:"es_ute"`
	UTEPartner        string       `json:"empresa_ute,omitempty"`
	InvitationDate    string       `json:"fecha_invitacion"`
	SubmissionDate    string       `json:"fecha_presentacion"`
	OfferAmount       float64      `json:"monto_oferta"`
	Currency          string       `json:"moneda"`
	DollarRate        float64      `json:"precio_dolar,omitempty"`
	AdvancePercent    float64      `json:"porcentaje_anticipo,omitempty"`
	ValidityTerm      int          `json:"plazo_validez"`
	ValidityUnit      ValidityUnit `json:"unidad_validez"`
	PolynomialFormula bool         `json:"formula_polinomica"`
	Duration          int          `json:"duracion_obra"`
	DurationUnit      string       `json:"unidad_duracion"`
	State             WorkState    `json:"estado_obra"`
	AwardedCompany    string       `json:"empresa_adjudicada,omitempty"`
	Observations      string       `json:"observaciones,omitempty"`
	TenderYear        int          `json:"anio_licitacion"`
	StartDate         string       `json:"fecha_inicio_obra,omitempty"`
	EndDate           string       `json:"fecha_finalizacion_obra,omitempty"`
	ProvisionalRecv   string       `json:"fecha_recepcion_provisoria,omitempty"`
	DefinitiveRecv    string       `json:"fecha_recepcion_definitiva,omitempty"`
	CreatedBy         Role         `json:"createdBy,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}
