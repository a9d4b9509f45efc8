package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"surgical-records/internal/domain/records"
)

// Header es la fila fija de encabezados, compartida por CSV y XLSX.
var Header = []string{
	"ID",
	"Fecha",
	"Historia Clínica",
	"Paciente",
	"Teléfono",
	"Intervención",
	"Región",
	"Artroscópica",
	"LCA",
	"Rodilla",
}

// BOM se antepone a las descargas para que las planillas detecten UTF-8.
const BOM = "\uFEFF"

// WriteCSV escribe encabezado + una fila por registro, en el orden recibido.
// Los campos de texto libre van siempre entre comillas con las comillas
// internas duplicadas. Cero registros produce solo el encabezado.
func WriteCSV(w io.Writer, items []records.PatientRecord) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range items {
		line := strings.Join(Row(r, quote), ",")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}

	return bw.Flush()
}

// CSV es WriteCSV sobre un buffer.
func CSV(items []records.PatientRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Row proyecta un registro a las columnas de Header. text se aplica a los
// campos de texto libre (CSV los cita; XLSX los deja tal cual).
func Row(r records.PatientRecord, text func(string) string) []string {
	if text == nil {
		text = func(s string) string { return s }
	}
	return []string{
		r.ID,
		r.Date,
		text(r.ClinicalHistoryID),
		text(r.PatientName),
		text(r.PhoneNumber),
		text(r.Intervention.Description),
		r.Intervention.Region.Label(),
		YesNo(r.Intervention.IsArthroscopic),
		YesNo(r.Intervention.IsLCA),
		YesNo(r.Intervention.IsKneeRelated),
	}
}

func YesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

// Filename arma el nombre de descarga con la fecha del día.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("registros_quirurgicos_%s.%s", now.Format(records.DateLayout), strings.TrimPrefix(ext, "."))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
