package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDonationPublicSanitizes(t *testing.T) {
	d := Donation{
		DonorName:       "Rosa Martinez",
		DonorEmail:      "rosa@example.com",
		ReferenceNumber: "TXN-4471",
		Anonymous:       true,
	}

	p := d.Public()
	assert.Equal(t, "Anonymous", p.DonorName)
	assert.Empty(t, p.DonorEmail)
	assert.Empty(t, p.ReferenceNumber)

	// Named donors keep their name but never their email or reference.
	d.Anonymous = false
	p = d.Public()
	assert.Equal(t, "Rosa Martinez", p.DonorName)
	assert.Empty(t, p.DonorEmail)
	assert.Empty(t, p.ReferenceNumber)
}

func TestDonationJSONCarriesDecimalAmount(t *testing.T) {
	d := Donation{
		ID:          primitive.NewObjectID(),
		AmountCents: 5025,
		Method:      MethodBank,
		Status:      DonationStatusPending,
	}

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "50.25", got["amount"])
	// Raw cents never appear on the wire.
	assert.NotContains(t, got, "amount_cents")
}

func TestMethodClassification(t *testing.T) {
	assert.True(t, ValidMethod(MethodBank))
	assert.True(t, ValidMethod(MethodDigiWallet))
	assert.True(t, ValidMethod(MethodEKyash))
	assert.False(t, ValidMethod("cash"))
	assert.False(t, ValidMethod(""))

	assert.False(t, InstantMethod(MethodBank))
	assert.True(t, InstantMethod(MethodDigiWallet))
	assert.True(t, InstantMethod(MethodEKyash))
}
