package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/oddsgrid/row"
)

type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *structpb.ListValue { return &structpb.ListValue{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// ProtoRows stores a row set as a google.protobuf.ListValue of Structs.
// Numbers come back as float64, matching the JSON codec.
type ProtoRows struct{}

var _ Codec[[]row.Row] = ProtoRows{}

func (ProtoRows) Encode(rows []row.Row) ([]byte, error) {
	items := make([]any, len(rows))
	for i, r := range rows {
		items[i] = map[string]any(r)
	}
	lv, err := structpb.NewList(items)
	if err != nil {
		return nil, fmt.Errorf("protobuf rows: %w", err)
	}
	return proto.Marshal(lv)
}

func (ProtoRows) Decode(b []byte) ([]row.Row, error) {
	lv := &structpb.ListValue{}
	if err := proto.Unmarshal(b, lv); err != nil {
		return nil, err
	}
	out := make([]row.Row, 0, len(lv.GetValues()))
	for _, v := range lv.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("protobuf rows: element is %T, want struct", v.GetKind())
		}
		out = append(out, row.Row(s.AsMap()))
	}
	return out, nil
}
