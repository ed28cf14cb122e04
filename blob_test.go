package mutationq

import (
	"context"
	"errors"
	"testing"
)

func TestBlobStorePutGetListDelete(t *testing.T) {
	ctx := context.Background()
	clock := testClock()
	blobs, err := NewBlobStore(newFakeKV(), WithBlobClock(clock))
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}

	stored, err := blobs.Put(ctx, BlobRecord{ID: "b2", ContentType: "image/png", Data: []byte{0x89, 0x50}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !stored.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected created at to be stamped, got %v", stored.CreatedAt)
	}
	if _, err := blobs.Put(ctx, BlobRecord{ID: "b1", Data: []byte("x")}); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := blobs.Get(ctx, "b2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != string([]byte{0x89, 0x50}) || got.ContentType != "image/png" {
		t.Fatalf("unexpected blob %+v", got)
	}

	infos, err := blobs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].ID != "b1" || infos[1].Size != 2 {
		t.Fatalf("unexpected listing %+v", infos)
	}

	if err := blobs.Delete(ctx, "b2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := blobs.Delete(ctx, "b2"); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
	if _, err := blobs.Get(ctx, "b2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlobStoreRequiresID(t *testing.T) {
	blobs, err := NewBlobStore(newFakeKV())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}
	if _, err := blobs.Put(context.Background(), BlobRecord{Data: []byte("x")}); !errors.Is(err, ErrBlobIDRequired) {
		t.Fatalf("expected ErrBlobIDRequired, got %v", err)
	}
	if _, err := NewBlobStore(nil); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestUploadBlobOutlivesEntryRemoval(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(newFakeKV())
	blobs, err := NewBlobStore(newFakeKV())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}

	if _, err := blobs.Put(ctx, BlobRecord{ID: "avatar", ContentType: "image/png", Data: []byte("png")}); err != nil {
		t.Fatalf("put blob: %v", err)
	}
	if _, err := q.Enqueue(ctx, Upload{Bucket: "avatars", Path: "u/1.png", BlobID: "avatar"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var uploaded []byte
	err = q.Drain(ctx, Dispatcher{Upload: func(ctx context.Context, _ Entry, op Upload) error {
		rec, err := blobs.Get(ctx, op.BlobID)
		if err != nil {
			return err
		}
		uploaded = rec.Data
		return nil
	}})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if string(uploaded) != "png" {
		t.Fatalf("expected blob bytes to reach the processor, got %q", uploaded)
	}
	if _, err := blobs.Get(ctx, "avatar"); err != nil {
		t.Fatalf("expected blob to survive entry removal: %v", err)
	}
}

func TestUploadWithMissingBlobHalts(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(newFakeKV())
	blobs, err := NewBlobStore(newFakeKV())
	if err != nil {
		t.Fatalf("new blob store: %v", err)
	}
	if _, err := q.Enqueue(ctx, Upload{Bucket: "b", Path: "p", BlobID: "gone"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var failure error
	q.cfg.ErrorHandler = func(_ context.Context, _ Entry, err error) { failure = err }
	err = q.Drain(ctx, Dispatcher{Upload: func(ctx context.Context, _ Entry, op Upload) error {
		_, err := blobs.Get(ctx, op.BlobID)
		return err
	}})
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if !errors.Is(failure, ErrNotFound) {
		t.Fatalf("expected missing blob failure, got %v", failure)
	}
	count, err := q.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected upload to stay queued, got %d (%v)", count, err)
	}
}
