package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"surgical-records/internal/domain/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []records.PatientRecord {
	return []records.PatientRecord{
		{
			ID:                "id-2",
			PatientName:       "Luis Pérez",
			ClinicalHistoryID: records.NoRecordSentinel,
			Date:              "2024-05-02",
			Intervention: records.SurgicalIntervention{
				Description: `He said "ok"`,
				Region:      records.RegionShoulder,
				IsLCA:       true,
			},
		},
		{
			ID:                "id-1",
			PatientName:       "Ana Gomez",
			ClinicalHistoryID: "123",
			PhoneNumber:       "555-1234, 555-9876",
			Date:              "2024-05-01",
			Intervention: records.SurgicalIntervention{
				Description:    "Meniscectomy",
				Region:         records.RegionKnee,
				IsArthroscopic: true,
				IsKneeRelated:  true,
			},
		},
	}
}

func TestCSV_QuotesAndFlags(t *testing.T) {
	out, err := CSV(sampleRecords())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "ID,Fecha,Historia Clínica,Paciente,Teléfono,Intervención,Región,Artroscópica,LCA,Rodilla", lines[0])
	assert.Equal(t, `id-2,2024-05-02,"Sin registro","Luis Pérez","","He said ""ok""",Hombro,No,Sí,No`, lines[1])
	assert.Equal(t, `id-1,2024-05-01,"123","Ana Gomez","555-1234, 555-9876","Meniscectomy",Rodilla,Sí,No,Sí`, lines[2])
	assert.Contains(t, lines[1], `"He said ""ok"""`)
}

func TestCSV_EmptyStoreIsHeaderOnly(t *testing.T) {
	out, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Header, ",")+"\n", string(out))
}

func TestCSV_Deterministic(t *testing.T) {
	a, err := CSV(sampleRecords())
	require.NoError(t, err)
	b, err := CSV(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "registros_quirurgicos_2024-05-01.csv", Filename(now, "csv"))
	assert.Equal(t, "registros_quirurgicos_2024-05-01.xlsx", Filename(now, ".xlsx"))
}

func TestXLSX_SameTableAsCSV(t *testing.T) {
	out, err := XLSX(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, `He said "ok"`, rows[1][5])
	assert.Equal(t, "Sí", rows[2][7])
}

func TestXLSX_EmptyStore(t *testing.T) {
	out, err := XLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
