package records

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/records", listRecordsHandler(store))
	r.Get("/records/{recordID}", getRecordHandler(store))

	// Borrado inmediato, sin confirmación ni soft-delete.
	r.Delete("/records/{recordID}", deleteRecordHandler(store))
}

// listRecordsHandler godoc
// @Summary Listar registros
// @Description Devuelve los registros guardados, el más reciente primero.
// @Tags records
// @Produce json
// @Success 200 {array} PatientRecord
// @Router /records [get]
func listRecordsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.List())
	}
}

// getRecordHandler godoc
// @Summary Obtener registro
// @Tags records
// @Produce json
// @Param recordID path string true "ID del registro"
// @Success 200 {object} PatientRecord
// @Failure 404 {string} string "record not found"
// @Router /records/{recordID} [get]
func getRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := store.Get(chi.URLParam(r, "recordID"))
		if !ok {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// deleteRecordHandler godoc
// @Summary Borrar registro
// @Description Borra el registro indicado. Borrar un id inexistente no es error (idempotente).
// @Tags records
// @Param recordID path string true "ID del registro"
// @Success 204
// @Failure 500 {string} string "internal error"
// @Router /records/{recordID} [delete]
func deleteRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Remove(r.Context(), chi.URLParam(r, "recordID")); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
