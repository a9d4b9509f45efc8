package export

import (
	"fmt"
	"net/http"
	"time"

	"surgical-records/internal/domain/records"
	"surgical-records/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Lister es lo único que el exportador necesita del store.
type Lister interface {
	List() []records.PatientRecord
}

type Options struct {
	Logger logger.Logger
	Now    func() time.Time
}

func RegisterRoutes(r chi.Router, src Lister, opts Options) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	log := opts.Logger.With(map[string]any{"component": "export"})

	r.Get("/records/export.csv", csvHandler(src, opts.Now, log))
	r.Get("/records/export.xlsx", xlsxHandler(src, opts.Now, log))
}

// csvHandler godoc
// @Summary Exportar CSV
// @Description Descarga todos los registros como CSV (UTF-8 con BOM), nombrado con la fecha del día. Sin registros responde 204 para no generar un archivo inútil.
// @Tags export
// @Produce text/csv
// @Success 200 {file} file
// @Success 204
// @Router /records/export.csv [get]
func csvHandler(src Lister, now func() time.Time, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := src.List()
		if len(items) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		body, err := CSV(items)
		if err != nil {
			log.Error("csv export failed", map[string]any{"error": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		attachment(w, "text/csv; charset=utf-8", Filename(now(), "csv"))
		_, _ = w.Write([]byte(BOM))
		_, _ = w.Write(body)
	}
}

// xlsxHandler godoc
// @Summary Exportar planilla
// @Description Igual que el CSV pero en formato XLSX.
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Success 204
// @Router /records/export.xlsx [get]
func xlsxHandler(src Lister, now func() time.Time, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := src.List()
		if len(items) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		body, err := XLSX(items)
		if err != nil {
			log.Error("xlsx export failed", map[string]any{"error": err.Error()})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Filename(now(), "xlsx"))
		_, _ = w.Write(body)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
