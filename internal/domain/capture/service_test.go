package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"surgical-records/internal/domain/records"
	"surgical-records/internal/ports/extraction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fakes
// -------------------------

type memMedium struct {
	mu   sync.Mutex
	blob []byte
}

func (m *memMedium) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob, nil
}

func (m *memMedium) Write(ctx context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = blob
	return nil
}

// fakeImage bloquea hasta que se cierre gate (si no es nil).
type fakeImage struct {
	gate    chan struct{}
	started chan struct{}
	payload records.PatientPayload
	err     error

	// panics > 0: las próximas llamadas entran en panic
	panics int
}

func (f *fakeImage) ExtractPatient(ctx context.Context, doc extraction.Document) (records.PatientPayload, error) {
	if f.panics > 0 {
		f.panics--
		panic("decoder blew up")
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.payload, f.err
}

type fakeAudio struct {
	gate    chan struct{}
	started chan struct{}
	iv      records.SurgicalIntervention
	err     error

	// hang: bloquea hasta que venza el contexto
	hang bool
}

func (f *fakeAudio) ExtractIntervention(ctx context.Context, doc extraction.Document) (records.SurgicalIntervention, error) {
	if f.hang {
		<-ctx.Done()
		return records.SurgicalIntervention{}, ctx.Err()
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.iv, f.err
}

var (
	jpeg = extraction.Document{Data: []byte{0xff, 0xd8, 0xff}, MediaType: "image/jpeg"}
	webm = extraction.Document{Data: []byte("OggS"), MediaType: "audio/webm;codecs=opus"}
	may1 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
)

func newService(t *testing.T, img *fakeImage, aud *fakeAudio) (*Service, *records.Store) {
	t.Helper()

	store := records.NewStore(&memMedium{}, nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	opts := Options{
		Builder: records.NewBuilder(func() time.Time { return may1 }),
		Store:   store,
	}
	if img != nil {
		opts.Image = img
	}
	if aud != nil {
		opts.Audio = aud
	}
	return NewService(opts), store
}

// -------------------------
// Tests
// -------------------------

func TestService_ImageThenAudioThenCommit(t *testing.T) {
	img := &fakeImage{payload: records.PatientPayload{PatientName: "Ana Gomez", ClinicalHistoryID: "123", Date: "2020-02-02"}}
	aud := &fakeAudio{iv: records.SurgicalIntervention{Description: "Meniscectomy", Region: records.RegionKnee, IsArthroscopic: true, IsKneeRelated: true}}
	svc, store := newService(t, img, aud)
	ctx := context.Background()

	d, err := svc.ProcessImage(ctx, jpeg)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Date)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", d.ImagePreview)

	_, err = svc.ProcessAudio(ctx, webm)
	require.NoError(t, err)

	rec, err := svc.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Gomez", rec.PatientName)
	assert.Equal(t, "2024-05-01", rec.Date)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, records.Draft{Date: "2024-05-01"}, svc.Draft(), "commit opens a fresh draft")
}

func TestService_CommitValidationLeavesDraft(t *testing.T) {
	img := &fakeImage{payload: records.PatientPayload{PatientName: "Ana"}}
	svc, store := newService(t, img, &fakeAudio{})

	_, err := svc.ProcessImage(context.Background(), jpeg)
	require.NoError(t, err)

	_, err = svc.Commit(context.Background())
	var ve *records.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Ana", svc.Draft().PatientName)
	assert.Equal(t, 0, store.Len())
}

func TestService_FailureClearsFlagAndKeepsDraft(t *testing.T) {
	img := &fakeImage{payload: records.PatientPayload{PatientName: "Ana"}}
	aud := &fakeAudio{err: errors.New("upstream 503")}
	svc, _ := newService(t, img, aud)
	ctx := context.Background()

	_, err := svc.ProcessImage(ctx, jpeg)
	require.NoError(t, err)
	before := svc.Draft()

	_, err = svc.ProcessAudio(ctx, webm)
	var xe *ExtractionError
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, ChannelAudio, xe.Channel)
	assert.Equal(t, RetryAudioMessage, xe.Message)

	assert.Equal(t, before, svc.Draft())
	st := svc.Status()
	assert.Equal(t, StateFailed, st.Audio.State)
	assert.Equal(t, RetryAudioMessage, st.Audio.LastError)
	assert.Equal(t, StateIdle, st.Image.State)

	// se puede reintentar
	aud.err = nil
	aud.iv = records.SurgicalIntervention{Description: "ok"}
	d, err := svc.ProcessAudio(ctx, webm)
	require.NoError(t, err)
	assert.Equal(t, "ok", d.Intervention.Description)
	assert.Equal(t, StateIdle, svc.Status().Audio.State)
}

func TestService_AtMostOneInFlightPerChannel(t *testing.T) {
	img := &fakeImage{
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
		payload: records.PatientPayload{PatientName: "Ana"},
	}
	aud := &fakeAudio{
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
		iv:      records.SurgicalIntervention{Description: "Artroscopia"},
	}
	svc, _ := newService(t, img, aud)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.ProcessImage(ctx, jpeg)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := svc.ProcessAudio(ctx, webm)
		assert.NoError(t, err)
	}()
	<-img.started
	<-aud.started

	// ambos canales en vuelo a la vez; un segundo pedido en el mismo canal rebota
	st := svc.Status()
	assert.Equal(t, StateInFlight, st.Image.State)
	assert.Equal(t, StateInFlight, st.Audio.State)

	_, err := svc.ProcessImage(ctx, jpeg)
	assert.ErrorIs(t, err, ErrChannelBusy)
	_, err = svc.ProcessAudio(ctx, webm)
	assert.ErrorIs(t, err, ErrChannelBusy)

	// mientras tanto el usuario puede editar
	_, err = svc.EditField(records.FieldPhoneNumber, "555-1234")
	require.NoError(t, err)

	close(img.gate)
	close(aud.gate)
	wg.Wait()

	d := svc.Draft()
	assert.Equal(t, "Ana", d.PatientName)
	assert.Empty(t, d.PhoneNumber, "image merge overwrites phone unconditionally")
	assert.Equal(t, "Artroscopia", d.Intervention.Description)
	assert.Equal(t, StateIdle, svc.Status().Image.State)
}

func TestService_RejectsBadDocuments(t *testing.T) {
	svc, _ := newService(t, &fakeImage{}, &fakeAudio{})
	ctx := context.Background()

	_, err := svc.ProcessImage(ctx, extraction.Document{MediaType: "image/png"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ProcessImage(ctx, extraction.Document{Data: []byte("x"), MediaType: "audio/webm"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ProcessAudio(ctx, extraction.Document{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ProcessImage(ctx, extraction.Document{Data: []byte("%PDF"), MediaType: "application/pdf"})
	assert.NoError(t, err)

	assert.Equal(t, StateIdle, svc.Status().Image.State)
}

func TestService_UnconfiguredChannel(t *testing.T) {
	svc, _ := newService(t, nil, nil)

	_, err := svc.ProcessImage(context.Background(), jpeg)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.ProcessAudio(context.Background(), webm)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestService_PanickingExtractorReleasesChannel(t *testing.T) {
	img := &fakeImage{panics: 1, payload: records.PatientPayload{PatientName: "Ana"}}
	svc, _ := newService(t, img, nil)
	ctx := context.Background()

	_, err := svc.ProcessImage(ctx, jpeg)
	var xe *ExtractionError
	require.ErrorAs(t, err, &xe)
	assert.ErrorIs(t, err, ErrExtractorPanic)
	assert.Equal(t, RetryImageMessage, xe.Message)

	st := svc.Status().Image
	assert.Equal(t, StateFailed, st.State)
	assert.Equal(t, RetryImageMessage, st.LastError)
	assert.Equal(t, records.Draft{Date: "2024-05-01"}, svc.Draft())

	d, err := svc.ProcessImage(ctx, jpeg)
	require.NoError(t, err, "retry after a panic is not rejected as busy")
	assert.Equal(t, "Ana", d.PatientName)
	assert.Equal(t, StateIdle, svc.Status().Image.State)
}

func TestService_TimeoutBoundsExtraction(t *testing.T) {
	store := records.NewStore(&memMedium{}, nil)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	svc := NewService(Options{
		Builder: records.NewBuilder(func() time.Time { return may1 }),
		Store:   store,
		Audio:   &fakeAudio{hang: true},
		Timeout: 20 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ProcessAudio(context.Background(), webm)
		done <- err
	}()

	select {
	case err := <-done:
		var xe *ExtractionError
		require.ErrorAs(t, err, &xe)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("extraction was not bounded by the timeout")
	}
	assert.Equal(t, StateFailed, svc.Status().Audio.State)
	assert.Nil(t, svc.Draft().Intervention)
}

func TestService_ImagePreview(t *testing.T) {
	svc, _ := newService(t, &fakeImage{payload: records.PatientPayload{PatientName: "Ana"}}, nil)

	_, _, ok := svc.ImagePreview()
	assert.False(t, ok)

	_, err := svc.ProcessImage(context.Background(), jpeg)
	require.NoError(t, err)

	mt, data, ok := svc.ImagePreview()
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", mt)
	assert.Equal(t, jpeg.Data, data)
}
