package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"surgical-records/internal/domain/export"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exporta los registros guardados sin levantar el servidor",
	Long: `Lee el medio configurado y escribe todos los registros a CSV o XLSX.

Examples:
  # CSV con el nombre del día en el directorio actual
  surgical-records export

  # Excel a un archivo puntual
  surgical-records export --format xlsx --out /tmp/registros.xlsx

  # CSV a stdout
  surgical-records export --out -`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv | xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "archivo destino; \"-\" = stdout; vacío = registros_quirurgicos_<fecha>.<ext>")
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown format %q (csv | xlsx)", exportFormat)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	store, closeStore, err := openStore(cmd.Context(), cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	items := store.List()
	if len(items) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no hay registros para exportar")
		return nil
	}

	var body []byte
	if format == "csv" {
		csv, err := export.CSV(items)
		if err != nil {
			return err
		}
		body = append([]byte(export.BOM), csv...)
	} else {
		body, err = export.XLSX(items)
		if err != nil {
			return err
		}
	}

	out := exportOut
	if out == "" {
		out = export.Filename(time.Now(), format)
	}

	if err := writeArtifact(cmd.OutOrStdout(), out, body); err != nil {
		return err
	}

	log.Info("export written", map[string]any{"format": format, "records": len(items), "out": out})
	return nil
}

// writeArtifact escribe body en stdout ("-") o en el archivo out. El error de
// Close se devuelve: en un archivo recién escrito puede ser el único aviso.
func writeArtifact(stdout io.Writer, out string, body []byte) (err error) {
	if out == "-" {
		_, err = stdout.Write(body)
		return err
	}

	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", out, cerr)
		}
	}()

	_, err = f.Write(body)
	return err
}
