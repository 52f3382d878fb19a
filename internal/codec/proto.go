package codec

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrEmptyPayload is returned when decoding zero bytes.
var ErrEmptyPayload = errors.New("empty payload")

// deterministic keeps map entries in key order so equal documents produce equal bytes.
var deterministic = proto.MarshalOptions{Deterministic: true}

// MarshalFields encodes a generic document as a google.protobuf.Struct. Reports travel
// in this form so consumers need no knowledge of the report types.
func MarshalFields(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("struct fields: %w", err)
	}
	b, err := deterministic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("proto marshal: %w", err)
	}
	return b, nil
}

func UnmarshalFields(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, ErrEmptyPayload
	}
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("proto unmarshal: %w", err)
	}
	return s.AsMap(), nil
}
