package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFormatSkipsBlankParts(t *testing.T) {
	addr := &Address{Street: "12 Le Loi", Ward: " ", District: "District 1", City: "HCMC"}
	assert.Equal(t, "12 Le Loi, District 1, HCMC", addr.Format())

	var missing *Address
	assert.Equal(t, "", missing.Format())
	assert.True(t, missing.IsEmpty())
}

func TestBankAccountIsComplete(t *testing.T) {
	var none *BankAccount
	assert.False(t, none.IsComplete())
	assert.False(t, (&BankAccount{BankName: "VCB"}).IsComplete())
	assert.True(t, (&BankAccount{BankName: "VCB", AccountNumber: "0123"}).IsComplete())
}

func TestLocalTimeRoundTrip(t *testing.T) {
	var payload struct {
		CreatedAt LocalTime  `json:"created_at"`
		UpdatedAt *LocalTime `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"created_at":"2024-01-02T10:00:00.123","updated_at":null}`), &payload))

	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 123000000, time.UTC), payload.CreatedAt.Time)
	assert.Nil(t, payload.UpdatedAt)

	out, err := json.Marshal(payload.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T10:00:00"`, string(out))
}

func TestLocalTimeRejectsGarbage(t *testing.T) {
	var lt LocalTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &lt))
}

func TestNumericAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		Price Numeric `json:"price"`
		Stock Numeric `json:"stock"`
		Bad   Numeric `json:"bad"`
		Empty Numeric `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":100000.50,"stock":"7","bad":"abc"}`), &payload))

	price, ok := payload.Price.Decimal()
	require.True(t, ok)
	assert.Equal(t, "100000.5", price.String())

	stock, ok := payload.Stock.Int()
	require.True(t, ok)
	assert.Equal(t, int64(7), stock)

	assert.False(t, payload.Bad.Valid())
	assert.True(t, payload.Bad.IsSet())
	assert.Equal(t, "abc", payload.Bad.Raw())

	assert.False(t, payload.Empty.IsSet())

	_, integral := ParseNumeric("1.5").Int()
	assert.False(t, integral)

	_, fits := ParseNumeric("18446744073709551617").Int()
	assert.False(t, fits)
	_, fits = ParseNumeric("18446744073709551617").IntValue()
	assert.False(t, fits)

	out, err := json.Marshal(payload.Bad)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestLocalTimeAcceptsArrayForm(t *testing.T) {
	var payload struct {
		CreatedAt LocalTime `json:"created_at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"created_at":[2024,1,2,10,30]}`), &payload))
	assert.Equal(t, "2024-01-02T10:30:00", payload.CreatedAt.String())

	require.Error(t, json.Unmarshal([]byte(`{"created_at":[2024]}`), &payload))
}
