// Package checkout implements the multi-step checkout wizard: a pure
// state accumulator persisted per browsing session. The wizard makes
// no network calls of its own; it collects contact, delivery and
// payment input across three steps and the handler fires the single
// reservation create on final submission.
package checkout

import (
	"strings"

	"github.com/ozautos/car-marketplace/internal/model"
)

// Wizard step bounds. Step 1 collects contact details, step 2
// delivery details, step 3 payment and review.
const (
	FirstStep = 1
	LastStep  = 3
)

// stateVersion is bumped whenever the persisted shape changes, so
// stale payloads from previous deployments are discarded on load
// instead of being trusted.
const stateVersion = 1

// State is the wizard's accumulated form state. FormData grows by
// shallow merge only: later writes overwrite individual keys but
// never remove others, so step navigation loses nothing.
type State struct {
	Version     int               `json:"version"`
	CurrentStep int               `json:"current_step"`
	CarID       uint64            `json:"car_id"`
	FormData    map[string]string `json:"form_data"`
}

// NewState returns a fresh wizard at step 1 for the given car.
func NewState(carID uint64) *State {
	return &State{
		Version:     stateVersion,
		CurrentStep: FirstStep,
		CarID:       carID,
		FormData:    map[string]string{},
	}
}

// SetCurrentStep sets the step unconditionally. Clamping is the
// business of Next/Previous only.
func (s *State) SetCurrentStep(n int) { s.CurrentStep = n }

// Next advances one step, never past the last.
func (s *State) Next() {
	if s.CurrentStep < LastStep {
		s.CurrentStep++
	}
}

// Previous steps back, never before the first.
func (s *State) Previous() {
	if s.CurrentStep > FirstStep {
		s.CurrentStep--
	}
}

// SetFormData shallow-merges partial into the accumulated form data.
// New keys overwrite, existing keys persist.
func (s *State) SetFormData(partial map[string]string) {
	if s.FormData == nil {
		s.FormData = map[string]string{}
	}
	for k, v := range partial {
		s.FormData[k] = v
	}
}

// SetCarID overwrites the target car unconditionally.
func (s *State) SetCarID(id uint64) { s.CarID = id }

// Reset restores the initial empty state: step 1, no form data, no car.
func (s *State) Reset() {
	s.CurrentStep = FirstStep
	s.FormData = map[string]string{}
	s.CarID = 0
}

// CustomerDetails assembles the reservation workflow input from the
// accumulated form data. Call only after ValidateSubmit has passed.
func (s *State) CustomerDetails() model.CustomerDetails {
	name := strings.TrimSpace(s.FormData["first_name"] + " " + s.FormData["last_name"])
	return model.CustomerDetails{
		Name:          name,
		Email:         s.FormData["email"],
		Phone:         s.FormData["phone"],
		StreetAddress: s.FormData["street_address"],
		Suburb:        s.FormData["suburb"],
		State:         s.FormData["state"],
		Postcode:      s.FormData["postcode"],
		PreferredDate: s.FormData["delivery_date"],
		PaymentMethod: s.FormData["payment_method"],
		CardLast4:     CardLast4(s.FormData["card_number"]),
	}
}
