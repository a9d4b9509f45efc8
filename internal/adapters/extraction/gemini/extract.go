package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"surgical-records/internal/domain/records"
	"surgical-records/internal/ports/extraction"
)

const patientPrompt = `Analiza la imagen o documento de un paciente (etiqueta, pulsera o planilla de ingreso).
Extrae los siguientes datos y responde SOLO con un objeto JSON:
- "patientName": nombre completo del paciente
- "clinicalHistoryId": número de historia clínica (HC), tal como aparece
- "date": fecha del documento en formato YYYY-MM-DD, o "" si no hay
- "phoneNumber": teléfono(s) de contacto; si hay varios, sepáralos con " / "
Si un dato no aparece, usa "".`

const interventionPrompt = `Escucha el dictado de un cirujano traumatólogo describiendo una intervención.
Responde SOLO con un objeto JSON:
- "description": descripción técnica de la intervención realizada
- "region": una de "shoulder", "knee", "elbow", "wrist", "foot_ankle", "hip", "other"
- "isArthroscopic": true si fue artroscópica
- "isLCA": true si involucra el ligamento cruzado anterior (LCA)
- "isKneeRelated": true si involucra la rodilla`

var (
	_ extraction.ImageExtractor = (*Client)(nil)
	_ extraction.AudioExtractor = (*Client)(nil)
)

func (c *Client) ExtractPatient(ctx context.Context, doc extraction.Document) (records.PatientPayload, error) {
	text, err := c.generate(ctx, patientPrompt, doc.Data, doc.MediaType)
	if err != nil {
		return records.PatientPayload{}, err
	}

	var raw struct {
		PatientName       string     `json:"patientName"`
		ClinicalHistoryID flexString `json:"clinicalHistoryId"`
		Date              string     `json:"date"`
		PhoneNumber       flexString `json:"phoneNumber"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return records.PatientPayload{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	date := strings.TrimSpace(raw.Date)
	if _, err := records.ParseDate(date); err != nil {
		date = ""
	}

	return records.PatientPayload{
		PatientName:       strings.TrimSpace(raw.PatientName),
		ClinicalHistoryID: strings.TrimSpace(string(raw.ClinicalHistoryID)),
		Date:              date,
		PhoneNumber:       strings.TrimSpace(string(raw.PhoneNumber)),
	}, nil
}

func (c *Client) ExtractIntervention(ctx context.Context, doc extraction.Document) (records.SurgicalIntervention, error) {
	text, err := c.generate(ctx, interventionPrompt, doc.Data, doc.MediaType)
	if err != nil {
		return records.SurgicalIntervention{}, err
	}

	var raw struct {
		Description    string `json:"description"`
		Region         string `json:"region"`
		IsArthroscopic bool   `json:"isArthroscopic"`
		IsLCA          bool   `json:"isLCA"`
		IsKneeRelated  bool   `json:"isKneeRelated"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return records.SurgicalIntervention{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return records.SurgicalIntervention{
		Description:    strings.TrimSpace(raw.Description),
		Region:         records.NormalizeBodyRegion(raw.Region),
		IsArthroscopic: raw.IsArthroscopic,
		IsLCA:          raw.IsLCA,
		IsKneeRelated:  raw.IsKneeRelated,
	}, nil
}

// flexString acepta string, número o lista de strings.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*f = flexString(strings.Join(list, " / "))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	return fmt.Errorf("unsupported value %s", string(b))
}
