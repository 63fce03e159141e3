package session

import (
	"testing"

	"clipstudio/types"
)

func video(id string) types.MediaAsset {
	return types.MediaAsset{ID: id, Filename: id + ".mp4", ContentType: "video/mp4"}
}

func TestSession_OrderPreserved(t *testing.T) {
	m := NewManager()
	s := m.GetOrCreate("edit-1")

	s.Add(video("a"))
	s.Add(video("b"))
	s.Add(video("c"))
	s.Remove("b")

	assets := s.Assets()
	if len(assets) != 2 {
		t.Fatalf("len = %d, want 2", len(assets))
	}
	if assets[0].ID != "a" || assets[1].ID != "c" {
		t.Fatalf("order = %s,%s, want a,c", assets[0].ID, assets[1].ID)
	}
}

func TestSession_RemoveReturnsAsset(t *testing.T) {
	s := NewManager().GetOrCreate("edit-1")
	s.Add(video("a"))
	s.AttachUpload("a", "k_a", "https://cdn.test/a.mp4")

	asset, ok := s.Remove("a")
	if !ok || asset == nil {
		t.Fatal("remove of present asset must return it")
	}
	if asset.Key != "k_a" {
		t.Fatalf("key = %q, want k_a", asset.Key)
	}

	if _, ok := s.Remove("a"); ok {
		t.Fatal("repeat remove must report absence")
	}
}

func TestSession_LateCallbackAfterRemoval(t *testing.T) {
	s := NewManager().GetOrCreate("edit-1")
	s.Add(video("a"))
	s.Remove("a")

	if s.SetMetadata("a", 2.5, nil) {
		t.Fatal("SetMetadata must be ignored for removed asset")
	}
	if s.AttachUpload("a", "k_a", "https://cdn.test/a.mp4") {
		t.Fatal("AttachUpload must be ignored for removed asset")
	}
	if len(s.Assets()) != 0 {
		t.Fatal("removed asset resurrected by late callback")
	}
}

func TestSession_VideoClipsRequireURL(t *testing.T) {
	s := NewManager().GetOrCreate("edit-1")
	s.Add(video("a"))
	s.Add(video("b"))
	s.AttachUpload("b", "k_b", "https://cdn.test/b.mp4")

	clips := s.VideoClips()
	if len(clips) != 1 || clips[0].ID != "b" {
		t.Fatalf("clips = %+v, want only uploaded b", clips)
	}
}

func TestSession_AudioTrack(t *testing.T) {
	s := NewManager().GetOrCreate("edit-1")
	s.Add(types.MediaAsset{ID: "m", Filename: "m.mp3", ContentType: "audio/mpeg"})
	s.AttachUpload("m", "k_m", "https://cdn.test/m.mp3")
	s.Add(video("a"))

	audio := s.AudioTrack()
	if audio == nil || audio.ID != "m" {
		t.Fatalf("audio = %+v, want m", audio)
	}
}

func TestSession_SingleFlightRender(t *testing.T) {
	s := NewManager().GetOrCreate("edit-1")

	if !s.TryBeginRender() {
		t.Fatal("first render claim must succeed")
	}
	if s.TryBeginRender() {
		t.Fatal("second claim while in flight must fail")
	}
	s.EndRender()
	if !s.TryBeginRender() {
		t.Fatal("claim after release must succeed")
	}
}

func TestManager_GetOrCreateStable(t *testing.T) {
	m := NewManager()
	a := m.GetOrCreate("x")
	b := m.GetOrCreate("x")
	if a != b {
		t.Fatal("same id must return same session")
	}

	fresh := m.GetOrCreate("")
	if fresh.ID == "" {
		t.Fatal("empty id must allocate a session id")
	}
	if m.Get(fresh.ID) != fresh {
		t.Fatal("allocated session must be retrievable")
	}
}
