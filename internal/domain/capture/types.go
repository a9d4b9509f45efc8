package capture

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrChannelBusy    = errors.New("extraction already in progress on this channel")
	ErrNotConfigured  = errors.New("extractor not configured")
	ErrExtractorPanic = errors.New("extractor panicked")
)

// Channel es una de las dos vías de captura independientes.
type Channel string

const (
	ChannelImage Channel = "image"
	ChannelAudio Channel = "audio"
)

// State del guard de un canal: a lo sumo una extracción en vuelo por canal.
type State string

const (
	StateIdle     State = "idle"
	StateInFlight State = "in_flight"
	StateFailed   State = "failed"
)

// Mensajes de reintento que ve el usuario.
const (
	RetryImageMessage = "No se pudo procesar la imagen. Intente nuevamente."
	RetryAudioMessage = "No se pudo procesar el audio. Intente nuevamente."
)

// ExtractionError envuelve la falla del adaptador con el mensaje para el usuario.
type ExtractionError struct {
	Channel Channel
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Channel, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ChannelStatus es lo que se muestra en la UI para cada canal.
type ChannelStatus struct {
	State     State  `json:"state"`
	LastError string `json:"lastError,omitempty"`
}

type Status struct {
	Image ChannelStatus `json:"image"`
	Audio ChannelStatus `json:"audio"`
}

func retryMessage(ch Channel) string {
	if ch == ChannelAudio {
		return RetryAudioMessage
	}
	return RetryImageMessage
}
