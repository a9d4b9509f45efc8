package extraction

import (
	"context"

	"surgical-records/internal/domain/records"
)

// Document son los bytes crudos que entrega un widget de captura.
type Document struct {
	Data      []byte
	MediaType string // "image/jpeg", "audio/webm", ...
}

// ImageExtractor lee datos del paciente desde una foto o PDF.
type ImageExtractor interface {
	ExtractPatient(ctx context.Context, doc Document) (records.PatientPayload, error)
}

// AudioExtractor transcribe un dictado a una intervención completa.
type AudioExtractor interface {
	ExtractIntervention(ctx context.Context, doc Document) (records.SurgicalIntervention, error)
}
