package event

import (
	"testing"
)

func TestDecode_RestoresConcreteType(t *testing.T) {
	in := &AddToCartEvent{
		BaseEvent: BaseEvent{Seq: 7, Ts: 1000, SessionID: "s1"},
		Value:     50,
		LineID:    "line-1",
	}

	payload, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out, err := Decode(in.GetType(), payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	add, ok := out.(*AddToCartEvent)
	if !ok {
		t.Fatalf("Expected *AddToCartEvent, got %T", out)
	}
	if *add != *in {
		t.Errorf("Decoded %+v, want %+v", add, in)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	if _, err := Decode("cart.explode", "{}"); err == nil {
		t.Error("Unknown type should fail")
	}
}

func TestDecode_BadPayload(t *testing.T) {
	if _, err := Decode(TypeRemoveLine, "{not json"); err == nil {
		t.Error("Malformed payload should fail")
	}
}
