package mutationq

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateOperation(t *testing.T) {
	obj := json.RawMessage(`{"id":1}`)
	cases := []struct {
		name         string
		op           Operation
		validateJSON bool
		want         error
	}{
		{name: "insert ok", op: Insert{Table: "t", Payload: obj}, validateJSON: true},
		{name: "insert no payload", op: Insert{Table: "t"}, want: ErrPayloadRequired},
		{name: "update no table", op: Update{Match: obj, Payload: obj}, want: ErrTableRequired},
		{name: "update no payload", op: Update{Table: "t", Match: obj}, want: ErrPayloadRequired},
		{name: "delete ok", op: Delete{Table: "t", Match: obj}, validateJSON: true},
		{name: "delete no match", op: Delete{Table: "t"}, want: ErrMatchRequired},
		{name: "rpc no args", op: RPC{Procedure: "p"}, validateJSON: true},
		{name: "rpc no name", op: RPC{Args: obj}, want: ErrProcedureRequired},
		{name: "rpc bad args", op: RPC{Procedure: "p", Args: json.RawMessage(`{x}`)}, validateJSON: true, want: ErrInvalidJSON},
		{name: "rpc bad args unchecked", op: RPC{Procedure: "p", Args: json.RawMessage(`{x}`)}},
		{name: "function no name", op: FunctionCall{}, want: ErrFunctionRequired},
		{name: "function ok", op: &FunctionCall{Function: "f"}, validateJSON: true},
		{name: "upload no bucket", op: Upload{Path: "p", BlobID: "b"}, want: ErrBucketRequired},
		{name: "upload no path", op: Upload{Bucket: "b", BlobID: "b"}, want: ErrPathRequired},
		{name: "upload ok", op: Upload{Bucket: "b", Path: "p", BlobID: "b"}},
		{name: "nil", op: nil, want: ErrOperationRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOperation(tc.op, tc.validateJSON)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
