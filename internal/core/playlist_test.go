package core

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestPlaylistSync_CreatesMissingPlaylist(t *testing.T) {
	store := newMockPlaylistStore()
	sync := NewPlaylistSync(store, "Sweating", newMapSet, zap.NewNop(), nil)

	added, err := sync.Sync(context.Background(), []string{"a", "b", "a"})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if added != 2 {
		t.Errorf("Sync() added %d, want 2", added)
	}
	if !reflect.DeepEqual(store.created, []string{"Sweating"}) {
		t.Errorf("created playlists = %v", store.created)
	}
	if got := store.tracks["pl-Sweating"]; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("playlist contents = %v", got)
	}
}

func TestPlaylistSync_AddsOnlyDifference(t *testing.T) {
	store := newMockPlaylistStore()
	store.playlists["Sweating"] = "pl-1"
	store.tracks["pl-1"] = []string{"a", "c"}

	sync := NewPlaylistSync(store, "Sweating", newMapSet, zap.NewNop(), nil)
	added, err := sync.Sync(context.Background(), []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if added != 2 || !reflect.DeepEqual(store.added(), []string{"b", "d"}) {
		t.Errorf("added %d tracks %v, want b and d", added, store.added())
	}
	if len(store.created) != 0 {
		t.Error("existing playlist must not be recreated")
	}

	again, err := sync.Sync(context.Background(), []string{"a", "b", "c", "d"})
	if err != nil || again != 0 {
		t.Errorf("second Sync() = %d, %v; want 0, nil", again, err)
	}
}

func TestPlaylistSync_ChunksAdds(t *testing.T) {
	store := newMockPlaylistStore()
	sync := NewPlaylistSync(store, "", newMapSet, zap.NewNop(), nil)

	ids := make([]string, 230)
	for i := range ids {
		ids[i] = fmt.Sprintf("track%03d", i)
	}

	added, err := sync.Sync(context.Background(), ids)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if added != 230 || len(store.addCalls) != 3 {
		t.Errorf("added %d in %d calls, want 230 in 3", added, len(store.addCalls))
	}
	if store.created[0] != DefaultPlaylistName {
		t.Errorf("created %q, want default name", store.created[0])
	}
}

func TestPlaylistSync_LookupFailure(t *testing.T) {
	store := newMockPlaylistStore()
	store.failFind = true

	sync := NewPlaylistSync(store, "Sweating", newMapSet, zap.NewNop(), nil)
	if _, err := sync.Sync(context.Background(), []string{"a"}); err == nil {
		t.Error("Sync() expected error when the playlist lookup fails")
	}
	if len(store.addCalls) != 0 {
		t.Error("no tracks should be added after a failed lookup")
	}
}
