package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentTerms(t *testing.T) {
	phases, err := ParsePaymentTerms("Deposit: 50% - On order confirmation\nBalance: 50% - On delivery")
	require.NoError(t, err)
	require.Len(t, phases, 2)
	assert.Equal(t, PaymentPhase{Name: "Deposit", Percent: 50, Condition: "On order confirmation"}, phases[0])
	assert.Equal(t, PaymentPhase{Name: "Balance", Percent: 50, Condition: "On delivery"}, phases[1])
}

func TestParsePaymentTermsSkipsBlankLines(t *testing.T) {
	phases, err := ParsePaymentTerms("\nFull payment: 100% - Before dispatch\n\n")
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, "Full payment", phases[0].Name)
}

func TestParsePaymentTermsFractionalPercent(t *testing.T) {
	phases, err := ParsePaymentTerms("Deposit: 33.5% - Upfront")
	require.NoError(t, err)
	assert.Equal(t, 33.5, phases[0].Percent)
}

func TestParsePaymentTermsRejectsMalformedLines(t *testing.T) {
	cases := []string{
		"just some prose with no structure",
		"Deposit 50% - missing colon",
		"Deposit: fifty% - words not numbers",
		"Deposit: 50% no separator before condition",
	}
	for _, body := range cases {
		_, err := ParsePaymentTerms(body)
		assert.ErrorIs(t, err, ErrBadPhaseLine, "body: %q", body)
	}
}

func TestPaymentTermsRoundTrip(t *testing.T) {
	body := "Deposit: 30% - On order confirmation\n" +
		"Progress: 45.5% - On shipment\n" +
		"Balance: 24.5% - 30 days after delivery"

	phases, err := ParsePaymentTerms(body)
	require.NoError(t, err)

	rendered := RenderPaymentTerms(phases)
	assert.Equal(t, body, rendered)

	again, err := ParsePaymentTerms(rendered)
	require.NoError(t, err)
	assert.Equal(t, phases, again)
}

func TestValidatePaymentTerms(t *testing.T) {
	ok := []PaymentPhase{
		{Name: "Deposit", Percent: 30, Condition: "Upfront"},
		{Name: "Balance", Percent: 70, Condition: "On delivery"},
	}
	assert.NoError(t, ValidatePaymentTerms(ok))

	short := []PaymentPhase{{Name: "Deposit", Percent: 90, Condition: "Upfront"}}
	assert.ErrorIs(t, ValidatePaymentTerms(short), ErrBadPercent)

	negative := []PaymentPhase{
		{Name: "Deposit", Percent: 150, Condition: "Upfront"},
		{Name: "Refund", Percent: -50, Condition: "Later"},
	}
	assert.ErrorIs(t, ValidatePaymentTerms(negative), ErrBadPercent)
}

func TestDefaultPaymentTemplateIsParseable(t *testing.T) {
	body, err := Template(PaymentSection)
	require.NoError(t, err)

	phases, err := ParsePaymentTerms(body)
	require.NoError(t, err)
	assert.NoError(t, ValidatePaymentTerms(phases))
}

func TestTemplateUnknownSection(t *testing.T) {
	_, err := Template("No Such Section")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestTemplatesAreSorted(t *testing.T) {
	names := SectionNames()
	assert.Contains(t, names, PaymentSection)

	sections := Templates()
	require.Equal(t, len(names), len(sections))
	for i, s := range sections {
		assert.Equal(t, names[i], s.Name)
		assert.NotEmpty(t, s.Body)
	}
}
