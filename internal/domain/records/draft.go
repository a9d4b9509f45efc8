package records

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Builder mantiene el borrador en curso. Cada merge, edición o reset es una
// única actualización bajo mu; los lectores reciben copias.
type Builder struct {
	mu    sync.Mutex
	draft Draft
	now   func() time.Time
}

func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	b := &Builder{now: now}
	b.draft = b.fresh()
	return b
}

func (b *Builder) fresh() Draft {
	return Draft{Date: Today(b.now())}
}

// Draft devuelve una copia del borrador actual.
func (b *Builder) Draft() Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft.clone()
}

// ApplyImageExtraction pisa nombre, historia clínica y teléfono aunque vengan
// vacíos. La fecha nunca se toca: es la fecha de carga, no la del documento.
func (b *Builder) ApplyImageExtraction(p PatientPayload, preview string) Draft {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draft.PatientName = p.PatientName
	b.draft.ClinicalHistoryID = p.ClinicalHistoryID
	b.draft.PhoneNumber = p.PhoneNumber
	b.draft.ImagePreview = preview

	return b.draft.clone()
}

// ApplyAudioExtraction reemplaza la intervención completa; un segundo dictado
// descarta el anterior.
func (b *Builder) ApplyAudioExtraction(iv SurgicalIntervention) Draft {
	b.mu.Lock()
	defer b.mu.Unlock()

	iv.Region = NormalizeBodyRegion(string(iv.Region))
	b.draft.Intervention = &iv

	return b.draft.clone()
}

// EditField aplica una corrección manual. Los booleanos aceptan true/false
// (también "Sí"/"No"); la región debe pertenecer al conjunto cerrado.
func (b *Builder) EditField(f Field, value string) (Draft, error) {
	return b.EditFields([]Edit{{Field: f, Value: value}})
}

// Edit es una corrección manual de un campo.
type Edit struct {
	Field Field
	Value string
}

// EditFields aplica todas las ediciones o ninguna.
func (b *Builder) EditFields(edits []Edit) (Draft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.draft.clone()
	for _, e := range edits {
		if err := applyEdit(&next, e.Field, e.Value); err != nil {
			return b.draft.clone(), err
		}
	}
	b.draft = next
	return b.draft.clone(), nil
}

func applyEdit(d *Draft, f Field, value string) error {
	if f.isIntervention() && d.Intervention == nil {
		return ErrNoIntervention
	}

	switch f {
	case FieldPatientName:
		d.PatientName = value
	case FieldClinicalHistoryID:
		d.ClinicalHistoryID = value
	case FieldPhoneNumber:
		d.PhoneNumber = value
	case FieldDate:
		// vacío se permite: Commit vuelve a poner la fecha del día
		if strings.TrimSpace(value) != "" {
			if _, err := ParseDate(value); err != nil {
				return err
			}
		}
		d.Date = strings.TrimSpace(value)
	case FieldDescription:
		d.Intervention.Description = value
	case FieldRegion:
		r, err := ParseBodyRegion(value)
		if err != nil {
			return err
		}
		d.Intervention.Region = r
	case FieldArthroscopic, FieldLCA, FieldKneeRelated:
		v, err := parseBool(value)
		if err != nil {
			return err
		}
		setFlag(d.Intervention, Flag(strings.TrimPrefix(string(f), "intervention.")), v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

// ToggleInterventionFlag invierte un booleano. Sin intervención no hace nada.
func (b *Builder) ToggleInterventionFlag(flag Flag) Draft {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.draft.Intervention != nil {
		setFlag(b.draft.Intervention, flag, !getFlag(b.draft.Intervention, flag))
	}
	return b.draft.clone()
}

func (b *Builder) ValidateForCommit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ValidateForCommit(b.draft)
}

// Reset descarta el borrador y abre uno vacío con la fecha de hoy.
func (b *Builder) Reset() Draft {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draft = b.fresh()
	return b.draft.clone()
}

// Promote entrega el borrador a commit mientras mantiene el lock, de modo que
// ninguna edición se cuele entre la confirmación y el reset. Si commit falla
// el borrador queda intacto.
func (b *Builder) Promote(commit func(Draft) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := commit(b.draft.clone()); err != nil {
		return err
	}
	b.draft = b.fresh()
	return nil
}

func getFlag(iv *SurgicalIntervention, flag Flag) bool {
	switch flag {
	case FlagArthroscopic:
		return iv.IsArthroscopic
	case FlagLCA:
		return iv.IsLCA
	case FlagKneeRelated:
		return iv.IsKneeRelated
	default:
		return false
	}
}

func setFlag(iv *SurgicalIntervention, flag Flag, v bool) {
	switch flag {
	case FlagArthroscopic:
		iv.IsArthroscopic = v
	case FlagLCA:
		iv.IsLCA = v
	case FlagKneeRelated:
		iv.IsKneeRelated = v
	}
}
