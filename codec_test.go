package mutationq

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestEncodeDecodeEntryAllKinds(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC)
	ops := []Operation{
		Insert{Table: "todos", Payload: json.RawMessage(`{"title":"a"}`)},
		Update{Table: "todos", Match: json.RawMessage(`{"id":1}`), Payload: json.RawMessage(`{"done":true}`)},
		Delete{Table: "todos", Match: json.RawMessage(`{"id":1}`)},
		RPC{Procedure: "archive", Args: json.RawMessage(`{"days":7}`)},
		FunctionCall{Function: "notify", Body: json.RawMessage(`{"to":"x"}`)},
		Upload{Bucket: "avatars", Path: "u/1.png", BlobID: "blob-1", Options: UploadOptions{ContentType: "image/png", Upsert: true}},
	}

	for i, op := range ops {
		t.Run(op.Kind().String(), func(t *testing.T) {
			entry := Entry{ID: "e", Seq: uint64(i + 1), CreatedAt: created, Op: op}
			data, err := EncodeEntry(entry)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := DecodeEntry(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.ID != entry.ID || decoded.Seq != entry.Seq || !decoded.CreatedAt.Equal(created) {
				t.Fatalf("unexpected header %+v", decoded)
			}
			if !reflect.DeepEqual(decoded.Op, op) {
				t.Fatalf("expected %#v, got %#v", op, decoded.Op)
			}
		})
	}
}

func TestDecodeEntryUnknownKind(t *testing.T) {
	data := []byte(`{"id":"e","seq":1,"created_at":"2024-05-01T12:00:00Z","kind":"teleport","op":{}}`)
	if _, err := DecodeEntry(data); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDecodeEntryCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":   `{`,
		"missing id": `{"seq":1,"kind":"insert","op":{"table":"t","payload":{}}}`,
		"missing op": `{"id":"e","seq":1,"kind":"insert"}`,
		"bad op":     `{"id":"e","seq":1,"kind":"insert","op":"text"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeEntry([]byte(raw)); !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got %v", err)
			}
		})
	}
}

func TestEncodeEntryRequiresOperation(t *testing.T) {
	if _, err := EncodeEntry(Entry{ID: "e"}); !errors.Is(err, ErrOperationRequired) {
		t.Fatalf("expected ErrOperationRequired, got %v", err)
	}
}
