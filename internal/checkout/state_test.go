package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	st := NewState(42)

	assert.Equal(t, stateVersion, st.Version)
	assert.Equal(t, FirstStep, st.CurrentStep)
	assert.Equal(t, uint64(42), st.CarID)
	require.NotNil(t, st.FormData)
	assert.Empty(t, st.FormData)
}

func TestState_NextClampsAtLastStep(t *testing.T) {
	st := NewState(1)

	st.Next()
	assert.Equal(t, 2, st.CurrentStep)
	st.Next()
	assert.Equal(t, LastStep, st.CurrentStep)

	// Already at the last step: must not move.
	st.Next()
	assert.Equal(t, LastStep, st.CurrentStep)
}

func TestState_PreviousClampsAtFirstStep(t *testing.T) {
	st := NewState(1)
	st.SetCurrentStep(2)

	st.Previous()
	assert.Equal(t, FirstStep, st.CurrentStep)

	// Already at the first step: must not move.
	st.Previous()
	assert.Equal(t, FirstStep, st.CurrentStep)
}

func TestState_SetFormDataMerges(t *testing.T) {
	st := NewState(1)

	st.SetFormData(map[string]string{"first_name": "Ada", "email": "ada@example.com"})
	st.SetFormData(map[string]string{"email": "ada@lovelace.dev", "phone": "0400000000"})

	assert.Equal(t, "Ada", st.FormData["first_name"], "untouched keys survive later merges")
	assert.Equal(t, "ada@lovelace.dev", st.FormData["email"], "resubmitted keys overwrite")
	assert.Equal(t, "0400000000", st.FormData["phone"])
}

func TestState_SetFormDataNilMap(t *testing.T) {
	st := &State{Version: stateVersion, CurrentStep: FirstStep}

	st.SetFormData(map[string]string{"suburb": "Richmond"})

	assert.Equal(t, "Richmond", st.FormData["suburb"])
}

func TestState_Reset(t *testing.T) {
	st := NewState(7)
	st.SetCurrentStep(3)
	st.SetFormData(map[string]string{"first_name": "Ada"})

	st.Reset()

	assert.Equal(t, FirstStep, st.CurrentStep)
	assert.Equal(t, uint64(0), st.CarID)
	assert.Empty(t, st.FormData)
}

func TestState_CustomerDetails(t *testing.T) {
	st := NewState(9)
	st.SetFormData(map[string]string{
		"first_name":     "Ada",
		"last_name":      "Lovelace",
		"email":          "ada@example.com",
		"phone":          "0400000000",
		"street_address": "1 Example St",
		"suburb":         "Richmond",
		"state":          "VIC",
		"postcode":       "3121",
		"delivery_date":  "2026-09-15",
		"payment_method": "card",
		"card_number":    "4111 1111 1111 1234",
	})

	details := st.CustomerDetails()

	assert.Equal(t, "Ada Lovelace", details.Name)
	assert.Equal(t, "ada@example.com", details.Email)
	assert.Equal(t, "2026-09-15", details.PreferredDate)
	assert.Equal(t, "card", details.PaymentMethod)
	assert.Equal(t, "1234", details.CardLast4, "only the masked suffix leaves the wizard")
}

func TestState_CustomerDetailsNameTrimmed(t *testing.T) {
	st := NewState(9)
	st.SetFormData(map[string]string{"first_name": "Madonna"})

	assert.Equal(t, "Madonna", st.CustomerDetails().Name)
}
