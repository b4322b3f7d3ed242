package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/concept/valuekind"
)

func TestAttributeIID_Deterministic(t *testing.T) {
	a, err := AttributeIID("name", valuekind.StringValue("alice"))
	if err != nil {
		t.Fatalf("AttributeIID: %v", err)
	}
	b, err := AttributeIID("name", valuekind.StringValue("alice"))
	if err != nil {
		t.Fatalf("AttributeIID: %v", err)
	}
	if a != b {
		t.Fatalf("IID not deterministic: %s vs %s", a, b)
	}
	if a.Version() != 1 || a.Prefix().Codec != cid.Raw || a.Prefix().MhType != multihash.SHA2_256 {
		t.Fatalf("unexpected prefix %+v", a.Prefix())
	}
}

func TestAttributeIID_Separates(t *testing.T) {
	base, _ := AttributeIID("name", valuekind.StringValue("1"))
	otherType, _ := AttributeIID("nickname", valuekind.StringValue("1"))
	otherKind, _ := AttributeIID("name", valuekind.LongValue(1))
	// "na" + "me..." must not collide with "name" + "...".
	shifted, _ := AttributeIID("na", valuekind.StringValue("me1"))
	for _, other := range []cid.Cid{otherType, otherKind, shifted} {
		if base == other {
			t.Fatalf("unexpected IID collision %s", base)
		}
	}
}

func TestParseIID(t *testing.T) {
	id, _ := AttributeIID("age", valuekind.LongValue(30))
	got, err := ParseIID(id.String())
	if err != nil {
		t.Fatalf("ParseIID: %v", err)
	}
	if got != id {
		t.Fatalf("ParseIID mismatch")
	}
	if _, err := ParseIID("not-a-cid"); err == nil {
		t.Fatalf("expected decode error")
	}
	sum, _ := multihash.Sum([]byte("x"), multihash.SHA2_256, -1)
	dagpb := cid.NewCidV1(cid.DagProtobuf, sum)
	if _, err := ParseIID(dagpb.String()); err != ErrNotAttributeIID {
		t.Fatalf("expected ErrNotAttributeIID, got %v", err)
	}
}
