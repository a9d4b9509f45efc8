package records

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var may1 = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestBuilder_NewDraftIsDatedToday(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	d := b.Draft()
	assert.Equal(t, "2024-05-01", d.Date)
	assert.Empty(t, d.PatientName)
	assert.Nil(t, d.Intervention)
}

func TestBuilder_ImageExtraction_NeverChangesDate(t *testing.T) {
	payloads := []PatientPayload{
		{PatientName: "Ana Gomez", ClinicalHistoryID: "123", Date: "1999-12-31"},
		{Date: ""},
		{Date: "not-a-date"},
		{PatientName: "X", Date: "2024-05-02", PhoneNumber: "555-1234 / 555-9876"},
	}
	for _, p := range payloads {
		b := NewBuilder(fixedClock(may1))
		d := b.ApplyImageExtraction(p, "data:image/png;base64,AAAA")
		assert.Equal(t, "2024-05-01", d.Date, "payload %+v", p)
	}
}

func TestBuilder_ImageExtraction_OverwritesEvenWithEmpty(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	b.ApplyImageExtraction(PatientPayload{PatientName: "Ana", ClinicalHistoryID: "1", PhoneNumber: "555"}, "p1")

	d := b.ApplyImageExtraction(PatientPayload{}, "p2")
	assert.Empty(t, d.PatientName)
	assert.Empty(t, d.ClinicalHistoryID)
	assert.Empty(t, d.PhoneNumber)
	assert.Equal(t, "p2", d.ImagePreview)
}

func TestBuilder_AudioExtraction_FullyReplacesIntervention(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	b.ApplyAudioExtraction(SurgicalIntervention{
		Description:    "Reconstrucción LCA",
		Region:         RegionKnee,
		IsArthroscopic: true,
		IsLCA:          true,
		IsKneeRelated:  true,
	})

	d := b.ApplyAudioExtraction(SurgicalIntervention{Description: "Túnel carpiano", Region: RegionWrist})
	require.NotNil(t, d.Intervention)
	assert.Equal(t, SurgicalIntervention{Description: "Túnel carpiano", Region: RegionWrist}, *d.Intervention)
}

func TestBuilder_AudioExtraction_NormalizesRegion(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	d := b.ApplyAudioExtraction(SurgicalIntervention{Region: BodyRegion("Rodilla izquierda")})
	assert.Equal(t, RegionKnee, d.Intervention.Region)

	d = b.ApplyAudioExtraction(SurgicalIntervention{Region: BodyRegion("columna")})
	assert.Equal(t, RegionOther, d.Intervention.Region)
}

func TestBuilder_EditsSurviveOtherChannelMerge(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	b.ApplyImageExtraction(PatientPayload{PatientName: "Ana Gmez"}, "")
	_, err := b.EditField(FieldPatientName, "Ana Gomez")
	require.NoError(t, err)

	b.ApplyAudioExtraction(SurgicalIntervention{Description: "Meniscectomía", Region: RegionKnee})
	d, err := b.EditField(FieldLCA, "true")
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", d.PatientName)

	// un nuevo merge de imagen no toca la intervención editada
	d = b.ApplyImageExtraction(PatientPayload{PatientName: "Otra"}, "")
	assert.True(t, d.Intervention.IsLCA)
}

func TestBuilder_EditField(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	_, err := b.EditField(FieldDescription, "x")
	assert.ErrorIs(t, err, ErrNoIntervention)
	assert.Nil(t, b.Draft().Intervention, "edit must not create an intervention")

	b.ApplyAudioExtraction(SurgicalIntervention{Region: RegionShoulder})

	d, err := b.EditField(FieldRegion, "Pie/Tobillo")
	require.NoError(t, err)
	assert.Equal(t, RegionFootAnkle, d.Intervention.Region)

	_, err = b.EditField(FieldRegion, "spine")
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err = b.EditField(FieldArthroscopic, "Sí")
	require.NoError(t, err)
	assert.True(t, d.Intervention.IsArthroscopic)

	_, err = b.EditField(FieldKneeRelated, "maybe")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = b.EditField(FieldDate, "01/05/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "2024-05-01", b.Draft().Date)

	d, err = b.EditField(FieldDate, "2024-04-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-30", d.Date)

	_, err = b.EditField(Field("intervention.surgeon"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = b.EditField(Field("age"), "40")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestBuilder_ToggleFlag(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	d := b.ToggleInterventionFlag(FlagLCA)
	assert.Nil(t, d.Intervention, "toggle without intervention is a no-op")

	b.ApplyAudioExtraction(SurgicalIntervention{Region: RegionShoulder})
	d = b.ToggleInterventionFlag(FlagKneeRelated)
	assert.True(t, d.Intervention.IsKneeRelated, "flags stay independent of region")
	assert.False(t, d.Intervention.IsLCA)
	assert.False(t, d.Intervention.IsArthroscopic)

	d = b.ToggleInterventionFlag(FlagKneeRelated)
	assert.False(t, d.Intervention.IsKneeRelated)
}

func TestBuilder_ValidateForCommit(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	var ve *ValidationError
	require.ErrorAs(t, b.ValidateForCommit(), &ve)
	assert.Equal(t, FieldPatientName, ve.Field)

	b.ApplyImageExtraction(PatientPayload{PatientName: "   "}, "")
	require.ErrorAs(t, b.ValidateForCommit(), &ve)
	assert.Equal(t, FieldPatientName, ve.Field)

	b.ApplyImageExtraction(PatientPayload{PatientName: "Ana"}, "")
	require.ErrorAs(t, b.ValidateForCommit(), &ve)
	assert.Equal(t, Field("intervention"), ve.Field)

	b.ApplyAudioExtraction(SurgicalIntervention{})
	assert.NoError(t, b.ValidateForCommit())
}

func TestBuilder_ResetDatesToCurrentMoment(t *testing.T) {
	now := may1
	b := NewBuilder(func() time.Time { return now })
	b.ApplyImageExtraction(PatientPayload{PatientName: "Ana"}, "p")
	b.ApplyAudioExtraction(SurgicalIntervention{})

	now = now.Add(48 * time.Hour)
	d := b.Reset()
	assert.Equal(t, Draft{Date: "2024-05-03"}, d)
}

func TestBuilder_PromoteKeepsDraftOnFailure(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	b.ApplyImageExtraction(PatientPayload{PatientName: "Ana"}, "")

	err := b.Promote(func(Draft) error { return ErrInvalidInput })
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Ana", b.Draft().PatientName)

	require.NoError(t, b.Promote(func(d Draft) error {
		assert.Equal(t, "Ana", d.PatientName)
		return nil
	}))
	assert.Empty(t, b.Draft().PatientName)
}

func TestBuilder_DraftSnapshotsAreIsolated(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	b.ApplyAudioExtraction(SurgicalIntervention{Description: "a"})

	d := b.Draft()
	d.Intervention.Description = "mutated"
	assert.Equal(t, "a", b.Draft().Intervention.Description)
}

func TestBuilder_ConcurrentMergesAndEdits(t *testing.T) {
	b := NewBuilder(fixedClock(may1))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			b.ApplyImageExtraction(PatientPayload{PatientName: "Ana", ClinicalHistoryID: "123"}, "")
		}()
		go func() {
			defer wg.Done()
			b.ApplyAudioExtraction(SurgicalIntervention{Description: "Artroscopia", Region: RegionKnee})
		}()
		go func() {
			defer wg.Done()
			b.ToggleInterventionFlag(FlagArthroscopic)
		}()
	}
	wg.Wait()

	d := b.Draft()
	assert.Equal(t, "Ana", d.PatientName)
	assert.Equal(t, "123", d.ClinicalHistoryID)
	require.NotNil(t, d.Intervention)
	assert.Equal(t, "Artroscopia", d.Intervention.Description)
	assert.Equal(t, "2024-05-01", d.Date)
}

func TestBuilder_EditFieldsIsAllOrNothing(t *testing.T) {
	b := NewBuilder(fixedClock(may1))
	b.ApplyAudioExtraction(SurgicalIntervention{Region: RegionHip})

	_, err := b.EditFields([]Edit{
		{Field: FieldPatientName, Value: "Ana"},
		{Field: FieldRegion, Value: "tail"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, b.Draft().PatientName)

	d, err := b.EditFields([]Edit{
		{Field: FieldPatientName, Value: "Ana"},
		{Field: FieldRegion, Value: "elbow"},
		{Field: FieldDescription, Value: "Epicondilitis"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.PatientName)
	assert.Equal(t, SurgicalIntervention{Description: "Epicondilitis", Region: RegionElbow}, *d.Intervention)
}
