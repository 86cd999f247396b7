package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// maxRows bounds the array and map sizes the decoder accepts. The library
// default (131072) is below what a large props endpoint returns.
const maxRows = 1 << 24

// CBOR stores row sets as CBOR. Nested objects decode as map[string]any and
// integers as int64, so a cached row reads back with the shapes row.Text and
// row.Number expect. Construct with NewCBOR or MustCBOR.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[[]map[string]any] = CBOR[[]map[string]any]{}

// NewCBOR builds the codec. canonical sorts map keys (RFC 8949 core
// deterministic encoding) so processes sharing a redis cache write identical
// bytes for the same page.
func NewCBOR[V any](canonical bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if canonical {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		IntDec:           cbor.IntDecConvertSigned,
		MaxArrayElements: maxRows,
		MaxMapPairs:      maxRows,
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR for package-level values and tests.
func MustCBOR[V any](canonical bool) CBOR[V] {
	c, err := NewCBOR[V](canonical)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
