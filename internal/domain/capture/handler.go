package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"

	"surgical-records/internal/domain/records"
	"surgical-records/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

// maxUploadBytes limita fotos y dictados.
const maxUploadBytes = 20 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/draft", func(dr chi.Router) {
		dr.Get("/", getDraftHandler(svc))
		dr.Patch("/", patchDraftHandler(svc))
		dr.Post("/reset", resetDraftHandler(svc))
		dr.Post("/flags/{flag}/toggle", toggleFlagHandler(svc))

		dr.Get("/image", previewHandler(svc))
		dr.Post("/image", uploadHandler(svc, ChannelImage))
		dr.Post("/audio", uploadHandler(svc, ChannelAudio))

		dr.Post("/commit", commitHandler(svc))
	})

	r.Get("/capture/status", statusHandler(svc))
}

// draftResponse es el borrador en edición.
type draftResponse struct {
	PatientName       string                        `json:"patientName"`
	ClinicalHistoryID string                        `json:"clinicalHistoryId"`
	PhoneNumber       string                        `json:"phoneNumber"`
	Date              string                        `json:"date"`
	Intervention      *records.SurgicalIntervention `json:"intervention,omitempty"`
	// La imagen no viaja en el JSON: se pide aparte a ImagePreviewURL.
	ImagePreviewURL string `json:"imagePreviewUrl,omitempty"`
	ReadyToCommit   bool   `json:"readyToCommit"`
}

// getDraftHandler godoc
// @Summary Obtener borrador
// @Description Devuelve el borrador en curso. `readyToCommit` indica si ya tiene nombre de paciente e intervención.
// @Tags draft
// @Produce json
// @Success 200 {object} draftResponse
// @Router /draft [get]
func getDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toDraftResponse(svc.Draft()))
	}
}

// patchDraftHandler godoc
// @Summary Editar campos del borrador
// @Description Aplica correcciones manuales. Las claves son rutas de campo (`patientName`, `clinicalHistoryId`, `phoneNumber`, `date`, `intervention.description`, `intervention.region`, `intervention.isArthroscopic`, `intervention.isLCA`, `intervention.isKneeRelated`); los valores son string o boolean. Se aplican todas o ninguna.
// @Tags draft
// @Accept json
// @Produce json
// @Param payload body object true "Mapa campo -> valor"
// @Success 200 {object} draftResponse
// @Failure 400 {string} string "invalid json / campo desconocido / valor inválido"
// @Failure 409 {string} string "no hay intervención todavía"
// @Router /draft [patch]
func patchDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// orden estable para que el error reportado sea determinístico
		keys := lo.Keys(raw)
		sort.Strings(keys)

		edits := make([]records.Edit, 0, len(keys))
		for _, k := range keys {
			v, err := editValue(raw[k])
			if err != nil {
				http.Error(w, fmt.Sprintf("%s: %v", k, err), http.StatusBadRequest)
				return
			}
			edits = append(edits, records.Edit{Field: records.Field(k), Value: v})
		}

		d, err := svc.EditFields(edits)
		if err != nil {
			switch {
			case errors.Is(err, records.ErrNoIntervention):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusOK, toDraftResponse(d))
	}
}

// resetDraftHandler godoc
// @Summary Descartar borrador
// @Description Descarta el borrador actual y abre uno vacío con la fecha de hoy.
// @Tags draft
// @Produce json
// @Success 200 {object} draftResponse
// @Router /draft/reset [post]
func resetDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toDraftResponse(svc.Reset()))
	}
}

// toggleFlagHandler godoc
// @Summary Invertir indicador de la intervención
// @Description Invierte `isArthroscopic`, `isLCA` o `isKneeRelated`. Si todavía no hay intervención no hace nada.
// @Tags draft
// @Produce json
// @Param flag path string true "isArthroscopic | isLCA | isKneeRelated"
// @Success 200 {object} draftResponse
// @Failure 400 {string} string "flag desconocido"
// @Router /draft/flags/{flag}/toggle [post]
func toggleFlagHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flag, err := records.ParseFlag(chi.URLParam(r, "flag"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toDraftResponse(svc.ToggleFlag(flag)))
	}
}

// uploadHandler godoc
// @Summary Procesar foto o dictado
// @Description Envía los bytes capturados al extractor del canal. El cuerpo puede ser binario crudo (Content-Type = tipo del medio) o multipart con el campo `file`. Solo se admite una extracción en vuelo por canal.
// @Tags capture
// @Accept octet-stream
// @Produce json
// @Success 200 {object} draftResponse
// @Failure 400 {string} string "archivo vacío o tipo no soportado"
// @Failure 409 {string} string "extracción en curso"
// @Failure 502 {string} string "mensaje de reintento"
// @Failure 503 {string} string "extractor no configurado"
// @Router /draft/image [post]
// @Router /draft/audio [post]
func uploadHandler(svc *Service, ch Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := readDocument(w, r)
		if err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}

		var d records.Draft
		if ch == ChannelAudio {
			d, err = svc.ProcessAudio(r.Context(), doc)
		} else {
			d, err = svc.ProcessImage(r.Context(), doc)
		}
		if err != nil {
			var xe *ExtractionError
			switch {
			case errors.As(err, &xe):
				http.Error(w, xe.Message, http.StatusBadGateway)
			case errors.Is(err, ErrChannelBusy):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotConfigured):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "empty upload or unsupported media type", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toDraftResponse(d))
	}
}

// previewHandler godoc
// @Summary Imagen fuente del borrador
// @Description Devuelve los bytes del último documento procesado por el canal de imagen.
// @Tags capture
// @Produce image/jpeg,image/png,application/pdf
// @Success 200 {file} file
// @Failure 404 {string} string "sin imagen"
// @Router /draft/image [get]
func previewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaType, data, ok := svc.ImagePreview()
		if !ok {
			http.Error(w, "no image preview", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", mediaType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// commitHandler godoc
// @Summary Guardar registro
// @Description Valida el borrador (nombre de paciente e intervención obligatorios), lo guarda con un id nuevo y abre un borrador vacío.
// @Tags draft
// @Produce json
// @Success 201 {object} records.PatientRecord
// @Failure 400 {string} string "campo obligatorio faltante"
// @Failure 500 {string} string "internal error"
// @Router /draft/commit [post]
func commitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Commit(r.Context())
		if err != nil {
			var ve *records.ValidationError
			if errors.As(err, &ve) {
				http.Error(w, ve.Message, http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// statusHandler godoc
// @Summary Estado de los canales de captura
// @Tags capture
// @Produce json
// @Success 200 {object} Status
// @Router /capture/status [get]
func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

func readDocument(w http.ResponseWriter, r *http.Request) (extraction.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return extraction.Document{}, err
	}

	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return extraction.Document{}, err
		}
		return extraction.Document{Data: data, MediaType: r.Header.Get("Content-Type")}, nil
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return extraction.Document{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extraction.Document{}, err
	}
	return extraction.Document{Data: data, MediaType: hdr.Header.Get("Content-Type")}, nil
}

func editValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "", nil
	default:
		return "", errors.New("value must be string or boolean")
	}
}

func toDraftResponse(d records.Draft) draftResponse {
	return draftResponse{
		PatientName:       d.PatientName,
		ClinicalHistoryID: d.ClinicalHistoryID,
		PhoneNumber:       d.PhoneNumber,
		Date:              d.Date,
		Intervention:      d.Intervention,
		ImagePreviewURL:   previewURL(d),
		ReadyToCommit:     records.ValidateForCommit(d) == nil,
	}
}

func previewURL(d records.Draft) string {
	if d.ImagePreview == "" {
		return ""
	}
	return "/draft/image"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
