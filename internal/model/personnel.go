package model

import "time"

// WorkLocation says where an employee works.
type WorkLocation string

const (
	LocationObra    WorkLocation = "Obra"
	LocationOficina WorkLocation = "Oficina"
)

// ContractLine is the hiring modality.
type ContractLine string

const (
	ContractLineA ContractLine = "Línea A"
	ContractLineB ContractLine = "Línea B"
)

// CivilState is the registered civil state of an employee.
type CivilState string

const (
	CivilSingle   CivilState = "Soltero/a"
	CivilMarried  CivilState = "Casado/a"
	CivilUnion    CivilState = "Unión convivencial"
	CivilDivorced CivilState = "Divorciado/a"
	CivilWidowed  CivilState = "Viudo/a"
)

// EmploymentState marks whether the employee is active on the payroll.
type EmploymentState string

const (
	EmploymentActive   EmploymentState = "Alta"
	EmploymentInactive EmploymentState = "Baja"
)

// Employee is a nómina record kept by Recursos Humanos.
// AssignedWorkID is required when Location is Obra; OfficeArea when Oficina.
type Employee struct {
	ID              string          `json:"id"`
	FullName        string          `json:"nombreCompleto"`
	DNI             string          `json:"dni"`
	BirthDate       string          `json:"fechaNacimiento"`
	Location        WorkLocation    `json:"ubicacionLaboral"`
	AssignedWorkID  string          `json:"obraAsignada,omitempty"`
	OfficeArea      Role            `json:"areaOficina,omitempty"`
	ContractLine    ContractLine    `json:"tipoContratacion"`
	CivilState      CivilState      `json:"estadoCivil"`
	HasChildren     bool            `json:"tieneHijos"`
	HealthInsurance string          `json:"obraSocial"`
	MedicalNotes    string          `json:"datosMedicosAdicionales,omitempty"`
	State           EmploymentState `json:"estadoPersonal"`
	TerminationDate string          `json:"fechaBaja,omitempty"`
	CreatedBy       Role            `json:"createdBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// AttendanceState classifies a day's attendance.
type AttendanceState string

const (
	AttendanceFullDay AttendanceState = "Jornada completa"
	AttendanceHalfDay AttendanceState = "Media jornada"
	AttendanceAbsent  AttendanceState = "Ausente"
)

// IsValid reports whether s is one of the known attendance states.
func (s AttendanceState) IsValid() bool {
	switch s {
	case AttendanceFullDay, AttendanceHalfDay, AttendanceAbsent:
		return true
	}
	return false
}

// AttendanceRecord is one employee's attendance on one date.
// At most one record exists per (EmployeeID, Date) pair.
type AttendanceRecord struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"personalId"`
	Date       string          `json:"fecha"`
	State      AttendanceState `json:"estado"`
	RecordedBy Role            `json:"registradoPor,omitempty"`
	RecordedAt time.Time       `json:"registradoAt"`
}
