package plate

import (
	"fmt"
	"sync"
)

// OneShot is a boolean that is read at most once after being set: Take returns
// the current value and clears it.
type OneShot struct {
	mu  sync.Mutex
	set bool
}

// Set arms the flag for the next Take.
func (o *OneShot) Set() {
	o.mu.Lock()
	o.set = true
	o.mu.Unlock()
}

// Take returns the flag and resets it to false. A nil OneShot reads as false.
func (o *OneShot) Take() bool {
	if o == nil {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	v := o.set
	o.set = false
	return v
}

// CategoryBlock is the category line of the details panel.
type CategoryBlock struct {
	Visible bool   `json:"visible"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Label   string `json:"label"`
}

// ChiefOfMissionNotice is the "A" notice shown for chief-of-mission plates.
type ChiefOfMissionNotice struct {
	Visible bool   `json:"visible"`
	Prefix  string `json:"prefix"`
	Text    string `json:"text"`
}

// DetailsView is everything a front end needs to show one decoded plate.
type DetailsView struct {
	Input          string               `json:"input"`
	Country        string               `json:"country,omitempty"`
	Decomposition  DecompositionView    `json:"decomposition"`
	Category       CategoryBlock        `json:"category"`
	ChiefOfMission ChiefOfMissionNotice `json:"chiefOfMission"`
	CaptureEnabled bool                 `json:"captureEnabled"`
	ErrorMessage   string               `json:"errorMessage,omitempty"`
}

// BuildDetails derives the details panel state for r. viewingCaptured is consumed
// on every call: when it was set, the capture action stays disabled for this call
// only.
func BuildDetails(r ParseResult, viewingCaptured *OneShot) DetailsView {
	viewing := viewingCaptured.Take()

	view := DetailsView{
		Input:         r.Input,
		Decomposition: Decompose(r),
	}
	if !r.OK() {
		view.ErrorMessage = r.Error.Message()
		return view
	}

	view.Country = r.Country

	if r.Category != "" {
		view.Category = CategoryBlock{
			Visible: true,
			Code:    r.CategoryCode,
			Name:    r.Category,
			Label:   fmt.Sprintf("%s: %s", r.CategoryCode, r.Category),
		}
	}

	if r.IsFullPlate && r.ChiefOfMissionUse {
		view.ChiefOfMission = ChiefOfMissionNotice{
			Visible: true,
			Prefix:  string(chiefOfMissionLetter),
			Text:    chiefOfMissionText,
		}
	}

	view.CaptureEnabled = r.IsFullPlate && !viewing
	return view
}
