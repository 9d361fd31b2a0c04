package artifact

import (
	"context"
	"testing"
	"time"

	"quill/internal/domain/models/artifact"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewSessionRegistry(time.Minute, time.Minute)
	session := newTestSession(t, &fakeAppender{})

	if !registry.Register(session) {
		t.Fatal("first Register should succeed")
	}
	if registry.Register(session) {
		t.Error("duplicate Register should fail")
	}

	if got := registry.Get("session-1"); got != session {
		t.Error("Get should return the registered session")
	}
	if got := registry.Get("missing"); got != nil {
		t.Error("Get for unknown id should return nil")
	}
	if registry.Count() != 1 {
		t.Errorf("Count = %d, want 1", registry.Count())
	}
}

func TestRegistryRemove(t *testing.T) {
	registry := NewSessionRegistry(time.Minute, time.Minute)
	session := newTestSession(t, &fakeAppender{})
	registry.Register(session)

	registry.Remove("session-1")
	if registry.Get("session-1") != nil {
		t.Error("session should be gone after Remove")
	}

	// Removing again is safe
	registry.Remove("session-1")
}

func TestRegistryFindByDocument(t *testing.T) {
	registry := NewSessionRegistry(time.Minute, time.Minute)
	session := newTestSession(t, &fakeAppender{})
	registry.Register(session)

	if registry.FindByDocument("doc-1") != nil {
		t.Error("session without a draft should not match any document")
	}

	session.ResetDraft(artifact.Version{DocumentID: "doc-1", Kind: artifact.KindText, Content: "x"})

	if registry.FindByDocument("doc-1") != session {
		t.Error("FindByDocument should locate the session holding doc-1")
	}
	if registry.FindByDocument("doc-2") != nil {
		t.Error("FindByDocument should return nil for unknown documents")
	}
}

func TestRegistryCleanupRemovesTerminalSessions(t *testing.T) {
	// Zero retention so a terminal session is removed on the second sweep
	registry := NewSessionRegistry(10*time.Millisecond, 0)
	session := newTestSession(t, &fakeAppender{})
	registry.Register(session)

	session.Start(newScriptedSource())
	session.Interrupt()
	waitForStatus(t, session, SessionCancelled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.StartCleanup(ctx)

	deadline := time.After(2 * time.Second)
	for registry.Count() != 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup never removed the terminal session")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
