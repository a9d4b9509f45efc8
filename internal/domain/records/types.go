package records

import (
	"fmt"
	"strings"
)

// BodyRegion es la región anatómica de la intervención.
// @Enum shoulder, knee, elbow, wrist, foot_ankle, hip, other
type BodyRegion string

const (
	RegionShoulder  BodyRegion = "shoulder"
	RegionKnee      BodyRegion = "knee"
	RegionElbow     BodyRegion = "elbow"
	RegionWrist     BodyRegion = "wrist"
	RegionFootAnkle BodyRegion = "foot_ankle"
	RegionHip       BodyRegion = "hip"
	RegionOther     BodyRegion = "other"
)

var allRegions = []BodyRegion{
	RegionShoulder,
	RegionKnee,
	RegionElbow,
	RegionWrist,
	RegionFootAnkle,
	RegionHip,
	RegionOther,
}

// Regions devuelve el conjunto cerrado de regiones en orden estable.
func Regions() []BodyRegion {
	out := make([]BodyRegion, len(allRegions))
	copy(out, allRegions)
	return out
}

// Label es el nombre que se muestra al usuario y el que se exporta.
func (r BodyRegion) Label() string {
	switch r {
	case RegionShoulder:
		return "Hombro"
	case RegionKnee:
		return "Rodilla"
	case RegionElbow:
		return "Codo"
	case RegionWrist:
		return "Muñeca"
	case RegionFootAnkle:
		return "Pie/Tobillo"
	case RegionHip:
		return "Cadera"
	default:
		return "Otro"
	}
}

// ParseBodyRegion es estricto: valores desconocidos son error.
// Acepta el código ("foot_ankle") o la etiqueta ("Pie/Tobillo"), sin importar mayúsculas.
func ParseBodyRegion(s string) (BodyRegion, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, r := range allRegions {
		if v == string(r) || v == strings.ToLower(r.Label()) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown body region %q", ErrInvalidInput, s)
}

// NormalizeBodyRegion es la versión tolerante para payloads de extracción:
// lo que no se reconoce cae en RegionOther.
func NormalizeBodyRegion(s string) BodyRegion {
	if r, err := ParseBodyRegion(s); err == nil {
		return r
	}

	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(v, "shoulder"), strings.Contains(v, "hombro"):
		return RegionShoulder
	case strings.Contains(v, "knee"), strings.Contains(v, "rodilla"):
		return RegionKnee
	case strings.Contains(v, "elbow"), strings.Contains(v, "codo"):
		return RegionElbow
	case strings.Contains(v, "wrist"), strings.Contains(v, "muñeca"), strings.Contains(v, "muneca"):
		return RegionWrist
	case strings.Contains(v, "foot"), strings.Contains(v, "ankle"), strings.Contains(v, "pie"), strings.Contains(v, "tobillo"):
		return RegionFootAnkle
	case strings.Contains(v, "hip"), strings.Contains(v, "cadera"):
		return RegionHip
	default:
		return RegionOther
	}
}

// Flag identifica uno de los tres booleanos independientes de la intervención.
type Flag string

const (
	FlagArthroscopic Flag = "isArthroscopic"
	FlagLCA          Flag = "isLCA"
	FlagKneeRelated  Flag = "isKneeRelated"
)

func ParseFlag(s string) (Flag, error) {
	switch Flag(strings.TrimSpace(s)) {
	case FlagArthroscopic:
		return FlagArthroscopic, nil
	case FlagLCA:
		return FlagLCA, nil
	case FlagKneeRelated:
		return FlagKneeRelated, nil
	default:
		return "", fmt.Errorf("%w: unknown flag %q", ErrInvalidInput, s)
	}
}

// Field es la ruta de un campo editable del borrador.
type Field string

const (
	FieldPatientName       Field = "patientName"
	FieldClinicalHistoryID Field = "clinicalHistoryId"
	FieldPhoneNumber       Field = "phoneNumber"
	FieldDate              Field = "date"

	FieldDescription  Field = "intervention.description"
	FieldRegion       Field = "intervention.region"
	FieldArthroscopic Field = "intervention.isArthroscopic"
	FieldLCA          Field = "intervention.isLCA"
	FieldKneeRelated  Field = "intervention.isKneeRelated"
)

func (f Field) isIntervention() bool {
	return strings.HasPrefix(string(f), "intervention.")
}
