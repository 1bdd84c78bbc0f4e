package models

// Level is the LOW/MEDIUM/HIGH scale shared by CancerType.RiskLevel and
// Prevention.Effectiveness.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Levels lists the valid levels in display order.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Label is the display name used by the HTML pages.
func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "Rendah"
	case LevelMedium:
		return "Sedang"
	case LevelHigh:
		return "Tinggi"
	}
	return string(l)
}

type TreatmentType string

const (
	TreatmentSurgery       TreatmentType = "SURGERY"
	TreatmentRadiation     TreatmentType = "RADIATION"
	TreatmentChemotherapy  TreatmentType = "CHEMOTHERAPY"
	TreatmentImmunotherapy TreatmentType = "IMMUNOTHERAPY"
	TreatmentTargeted      TreatmentType = "TARGETED"
	TreatmentHormone       TreatmentType = "HORMONE"
	TreatmentStemCell      TreatmentType = "STEM_CELL"
	TreatmentAlternative   TreatmentType = "ALTERNATIVE"
	TreatmentOther         TreatmentType = "OTHER"
)

// TreatmentTypes lists the valid treatment types in display order.
var TreatmentTypes = []TreatmentType{
	TreatmentSurgery, TreatmentRadiation, TreatmentChemotherapy,
	TreatmentImmunotherapy, TreatmentTargeted, TreatmentHormone,
	TreatmentStemCell, TreatmentAlternative, TreatmentOther,
}

var treatmentLabels = map[TreatmentType]string{
	TreatmentSurgery:       "Operasi",
	TreatmentRadiation:     "Terapi Radiasi",
	TreatmentChemotherapy:  "Kemoterapi",
	TreatmentImmunotherapy: "Imunoterapi",
	TreatmentTargeted:      "Terapi Target",
	TreatmentHormone:       "Terapi Hormon",
	TreatmentStemCell:      "Transplantasi Sel Induk",
	TreatmentAlternative:   "Terapi Alternatif",
	TreatmentOther:         "Lainnya",
}

func (t TreatmentType) Valid() bool {
	_, ok := treatmentLabels[t]
	return ok
}

func (t TreatmentType) Label() string {
	if l, ok := treatmentLabels[t]; ok {
		return l
	}
	return string(t)
}
