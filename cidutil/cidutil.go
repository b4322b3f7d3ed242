// Package cidutil derives content identifiers for attribute instances.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"xdao.co/concept/valuekind"
)

// AttributeIID returns the CIDv1 (raw + sha2-256) identifying the instance of
// value v owned by the attribute type labelled typeLabel.
//
// The digest covers the label, a zero separator, and v.Canonical(), so
// value-equal instances of one type share an IID and equal values under
// different types do not.
func AttributeIID(typeLabel string, v valuekind.Value) (cid.Cid, error) {
	data := make([]byte, 0, len(typeLabel)+1+16)
	data = append(data, typeLabel...)
	data = append(data, 0)
	data = append(data, v.Canonical()...)
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParseIID decodes an IID string produced by AttributeIID.
func ParseIID(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if id.Prefix().Codec != cid.Raw || id.Prefix().MhType != multihash.SHA2_256 {
		return cid.Undef, ErrNotAttributeIID
	}
	return id, nil
}
