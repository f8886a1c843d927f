package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEventRecordJSONRoundTrip(t *testing.T) {
	original := EventRecord{
		Seq:       3,
		OpSeq:     7,
		EventName: EventTokensSwapped,
		Timestamp: 1700000000,
		Decoded:   json.RawMessage(`{"swapper":"0x1111111111111111111111111111111111111111","currency_amount":100,"token_amount":90,"direction":"currency_in"}`),
		EmittedAt: "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded EventRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}

	var swap TokensSwappedData
	if err := json.Unmarshal(decoded.Decoded, &swap); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if swap.CurrencyAmount != 100 || swap.TokenAmount != 90 {
		t.Fatalf("payload mismatch: %+v", swap)
	}
}
