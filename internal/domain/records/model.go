package records

import "time"

// DateLayout es el formato ISO 8601 de calendario usado en `date`.
const DateLayout = "2006-01-02"

// NoRecordSentinel reemplaza una historia clínica vacía al confirmar.
const NoRecordSentinel = "Sin registro"

// SurgicalIntervention es un objeto valor. Los tres booleanos son hechos
// independientes: no se derivan de Region.
type SurgicalIntervention struct {
	Description    string     `json:"description"`
	Region         BodyRegion `json:"region"`
	IsArthroscopic bool       `json:"isArthroscopic"`
	IsLCA          bool       `json:"isLCA"`
	IsKneeRelated  bool       `json:"isKneeRelated"`
}

// PatientRecord es el registro confirmado. ID y CreatedAt se asignan en Commit.
type PatientRecord struct {
	ID                string               `json:"id"`
	PatientName       string               `json:"patientName"`
	ClinicalHistoryID string               `json:"clinicalHistoryId"`
	PhoneNumber       string               `json:"phoneNumber,omitempty"`
	Date              string               `json:"date"`
	Intervention      SurgicalIntervention `json:"intervention"`
	CreatedAt         time.Time            `json:"createdAt"`
}

// PatientPayload es lo que devuelve la extracción de imagen.
type PatientPayload struct {
	PatientName       string `json:"patientName"`
	ClinicalHistoryID string `json:"clinicalHistoryId"`
	Date              string `json:"date"`
	PhoneNumber       string `json:"phoneNumber"`
}

// Draft es un PatientRecord parcial, previo a Commit.
type Draft struct {
	PatientName       string `json:"patientName"`
	ClinicalHistoryID string `json:"clinicalHistoryId"`
	PhoneNumber       string `json:"phoneNumber"`
	Date              string `json:"date"`

	// nil = todavía no hubo dictado.
	Intervention *SurgicalIntervention `json:"intervention,omitempty"`

	// Referencia a la imagen fuente (data URL) para volver a mostrarla.
	ImagePreview string `json:"imagePreview,omitempty"`
}

// clone devuelve una copia que no comparte la intervención.
func (d Draft) clone() Draft {
	out := d
	if d.Intervention != nil {
		iv := *d.Intervention
		out.Intervention = &iv
	}
	return out
}
