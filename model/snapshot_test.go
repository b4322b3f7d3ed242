package model

import (
	"encoding/json"
	"errors"
	"testing"

	"xdao.co/concept/concept"
	"xdao.co/concept/clienterr"
	"xdao.co/concept/valuekind"
)

func TestSnapshot_Attribute_JSONShape(t *testing.T) {
	typ, err := concept.NewAttributeType("born", valuekind.DateTime)
	if err != nil {
		t.Fatalf("NewAttributeType: %v", err)
	}
	when, err := valuekind.ParseLocalDateTime("1990-05-17T08:30:00")
	if err != nil {
		t.Fatalf("ParseLocalDateTime: %v", err)
	}
	a, err := FromAttribute(concept.Attribute[valuekind.LocalDateTime]{IID: "bafk-1", Type: typ, Value: when})
	if err != nil {
		t.Fatalf("FromAttribute: %v", err)
	}

	b, err := json.MarshalIndent(Found(a), "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"found\": true,\n" +
		"  \"result\": {\n" +
		"    \"iid\": \"bafk-1\",\n" +
		"    \"type\": \"born\",\n" +
		"    \"valueKind\": \"datetime\",\n" +
		"    \"value\": \"1990-05-17T08:30:00\"\n" +
		"  }\n" +
		"}"

	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestSnapshot_AttributeType_JSONShape(t *testing.T) {
	b, err := json.Marshal([]AttributeType{
		FromAttributeType(concept.RootAttributeType()),
		{Label: "age", ValueKind: "long"},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	const want = `[{"label":"attribute","valueKind":"untyped","root":true},{"label":"age","valueKind":"long"}]`
	if string(b) != want {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}

	b, err = json.Marshal(Absent[Regex]())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"found":false}` {
		t.Fatalf("snapshot mismatch:\n%s", string(b))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Fatalf("FromError(nil) should be nil")
	}
	ce := FromError(clienterr.New(clienterr.KindKindMismatch, "attribute_type.set_supertype", "string vs long"))
	if ce.Code != ErrKindMismatch || ce.Op != "attribute_type.set_supertype" {
		t.Fatalf("unexpected coded error: %+v", ce)
	}
	if got := FromError(errors.New("boom")).Code; got != ErrInternal {
		t.Fatalf("plain error code = %s", got)
	}
	orig := NewError(ErrInvalidRequest, "bad flag")
	if FromError(orig) != orig {
		t.Fatalf("CodedError should pass through")
	}
}
