package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"surgical-records/internal/domain/records"
	"surgical-records/internal/metrics"
	"surgical-records/internal/platform/logger"
	"surgical-records/internal/ports/extraction"
)

// Service conecta los dos canales de extracción con el borrador y el store.
type Service struct {
	builder *records.Builder
	store   *records.Store
	image   extraction.ImageExtractor
	audio   extraction.AudioExtractor
	log     logger.Logger
	timeout time.Duration

	mu     sync.Mutex
	status map[Channel]ChannelStatus
}

type Options struct {
	Builder *records.Builder
	Store   *records.Store
	Image   extraction.ImageExtractor // puede ser nil: el canal responde ErrNotConfigured
	Audio   extraction.AudioExtractor
	Logger  logger.Logger

	// Timeout acota cada extracción completa (reintentos incluidos). 0 = sin tope.
	Timeout time.Duration
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	b := opts.Builder
	if b == nil {
		b = records.NewBuilder(nil)
	}
	return &Service{
		builder: b,
		store:   opts.Store,
		image:   opts.Image,
		audio:   opts.Audio,
		log:     log.With(map[string]any{"component": "capture"}),
		timeout: opts.Timeout,
		status: map[Channel]ChannelStatus{
			ChannelImage: {State: StateIdle},
			ChannelAudio: {State: StateIdle},
		},
	}
}

// ProcessImage extrae datos del paciente y los mezcla en el borrador.
// Si el canal ya tiene una extracción en vuelo devuelve ErrChannelBusy.
func (s *Service) ProcessImage(ctx context.Context, doc extraction.Document) (records.Draft, error) {
	if s.image == nil {
		return s.builder.Draft(), ErrNotConfigured
	}
	if err := validateDocument(doc, "image/"); err != nil {
		return s.builder.Draft(), err
	}
	if err := s.acquire(ChannelImage); err != nil {
		return s.builder.Draft(), err
	}

	var payload records.PatientPayload
	err := s.extract(ctx, ChannelImage, func(ctx context.Context) (err error) {
		payload, err = s.image.ExtractPatient(ctx, doc)
		return err
	})
	if err != nil {
		return s.builder.Draft(), s.fail(ChannelImage, err)
	}

	d := s.builder.ApplyImageExtraction(payload, previewDataURL(doc))
	s.release(ChannelImage)
	return d, nil
}

// ProcessAudio reemplaza la intervención del borrador con la del dictado.
func (s *Service) ProcessAudio(ctx context.Context, doc extraction.Document) (records.Draft, error) {
	if s.audio == nil {
		return s.builder.Draft(), ErrNotConfigured
	}
	if err := validateDocument(doc, "audio/"); err != nil {
		return s.builder.Draft(), err
	}
	if err := s.acquire(ChannelAudio); err != nil {
		return s.builder.Draft(), err
	}

	var iv records.SurgicalIntervention
	err := s.extract(ctx, ChannelAudio, func(ctx context.Context) (err error) {
		iv, err = s.audio.ExtractIntervention(ctx, doc)
		return err
	})
	if err != nil {
		return s.builder.Draft(), s.fail(ChannelAudio, err)
	}

	d := s.builder.ApplyAudioExtraction(iv)
	s.release(ChannelAudio)
	return d, nil
}

// Commit promueve el borrador al store y abre uno nuevo. Si la validación o
// la persistencia fallan el borrador queda intacto.
func (s *Service) Commit(ctx context.Context) (records.PatientRecord, error) {
	var rec records.PatientRecord
	err := s.builder.Promote(func(d records.Draft) error {
		var err error
		rec, err = s.store.Commit(ctx, d)
		return err
	})
	if err != nil {
		return records.PatientRecord{}, err
	}
	return rec, nil
}

func (s *Service) Draft() records.Draft {
	return s.builder.Draft()
}

func (s *Service) EditField(f records.Field, value string) (records.Draft, error) {
	return s.builder.EditField(f, value)
}

func (s *Service) EditFields(edits []records.Edit) (records.Draft, error) {
	return s.builder.EditFields(edits)
}

func (s *Service) ToggleFlag(flag records.Flag) records.Draft {
	return s.builder.ToggleInterventionFlag(flag)
}

func (s *Service) Reset() records.Draft {
	return s.builder.Reset()
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Image: s.status[ChannelImage],
		Audio: s.status[ChannelAudio],
	}
}

// extract corre la llamada al adapter desacoplada de la cancelación del request
// pero con el tope de s.timeout. Un panic del adapter se devuelve como error
// para que el guard del canal se libere igual.
func (s *Service) extract(ctx context.Context, ch Channel, call func(context.Context) error) (err error) {
	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrExtractorPanic, rec)
		}
		metrics.ExtractionDuration.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())
	}()

	return call(ctx)
}

func (s *Service) acquire(ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status[ch].State == StateInFlight {
		metrics.Extractions.WithLabelValues(string(ch), "busy").Inc()
		return ErrChannelBusy
	}
	s.status[ch] = ChannelStatus{State: StateInFlight}
	return nil
}

func (s *Service) release(ch Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status[ch] = ChannelStatus{State: StateIdle}
	metrics.Extractions.WithLabelValues(string(ch), "success").Inc()
}

// fail libera el guard sin tocar el borrador.
func (s *Service) fail(ch Channel, cause error) error {
	msg := retryMessage(ch)

	s.mu.Lock()
	s.status[ch] = ChannelStatus{State: StateFailed, LastError: msg}
	s.mu.Unlock()

	metrics.Extractions.WithLabelValues(string(ch), "error").Inc()
	s.log.Warn("extraction failed", map[string]any{
		"channel": string(ch),
		"error":   cause.Error(),
	})
	return &ExtractionError{Channel: ch, Message: msg, Err: cause}
}

func validateDocument(doc extraction.Document, family string) error {
	if len(doc.Data) == 0 {
		return ErrInvalidInput
	}
	mt := strings.ToLower(strings.TrimSpace(doc.MediaType))
	if mt == "" {
		return ErrInvalidInput
	}
	// los documentos escaneados pueden llegar como PDF
	if family == "image/" && mt == "application/pdf" {
		return nil
	}
	if !strings.HasPrefix(mt, family) {
		return ErrInvalidInput
	}
	return nil
}

// ImagePreview decodifica el data URL guardado en el borrador.
func (s *Service) ImagePreview() (mediaType string, data []byte, ok bool) {
	ref := s.builder.Draft().ImagePreview
	rest, found := strings.CutPrefix(ref, "data:")
	if !found {
		return "", nil, false
	}
	mediaType, payload, found := strings.Cut(rest, ";base64,")
	if !found {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mediaType, data, true
}

func previewDataURL(doc extraction.Document) string {
	return "data:" + doc.MediaType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)
}
