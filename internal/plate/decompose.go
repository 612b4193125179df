package plate

// SegmentRole names which part of the plate a segment shows.
type SegmentRole string

const (
	RoleCategory SegmentRole = "category"
	RoleNumber   SegmentRole = "number"
	RoleCountry  SegmentRole = "country"
	RoleUse      SegmentRole = "use"
)

const (
	categoryPlaceholder   = "Categoría"
	assignedNumberTooltip = "Número asignado"
	chiefOfMissionText    = "Uso exclusivo de jefes de misiones diplomaticas"
	generalUseText        = "Uso general"
)

// Segment is one labeled piece of a decoded plate.
type Segment struct {
	Text    string      `json:"text"`
	Tooltip string      `json:"tooltip"`
	Role    SegmentRole `json:"role"`
}

// DecompositionView is the ordered breakdown of a plate for display.
type DecompositionView struct {
	Visible  bool      `json:"visible"`
	Segments []Segment `json:"segments"`
}

// Decompose splits a parse result into display segments: four for a full plate
// (category, number, country, use), one for a bare country code, none otherwise.
// A result carrying an error always yields a hidden, empty view.
func Decompose(r ParseResult) DecompositionView {
	if !r.OK() {
		return DecompositionView{Segments: []Segment{}}
	}

	if r.IsFullPlate && len(r.Input) == 7 {
		categoryTip := r.Category
		if categoryTip == "" {
			categoryTip = categoryPlaceholder
		}
		useTip := generalUseText
		if r.ChiefOfMissionUse {
			useTip = chiefOfMissionText
		}
		return DecompositionView{
			Visible: true,
			Segments: []Segment{
				{Text: r.Input[0:1], Tooltip: categoryTip, Role: RoleCategory},
				{Text: r.Input[1:4], Tooltip: assignedNumberTooltip, Role: RoleNumber},
				{Text: r.Input[4:6], Tooltip: r.Country, Role: RoleCountry},
				{Text: r.Input[6:7], Tooltip: useTip, Role: RoleUse},
			},
		}
	}

	if len(r.Input) == 2 {
		return DecompositionView{
			Visible:  true,
			Segments: []Segment{{Text: r.Code, Tooltip: r.Country, Role: RoleCountry}},
		}
	}

	return DecompositionView{Segments: []Segment{}}
}
