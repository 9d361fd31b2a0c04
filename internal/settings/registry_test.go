package settings

import (
	"slices"
	"testing"
)

func TestNewRegistryLoadsEngineSettings(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	engine := registry.Engine()
	if engine == nil {
		t.Fatal("Engine() returned nil")
	}

	if engine.Visibility.ContentThreshold != 400 {
		t.Errorf("content_threshold = %d, want 400", engine.Visibility.ContentThreshold)
	}
	if !slices.Contains(engine.Visibility.ImmediateKinds, "code") {
		t.Errorf("immediate_kinds = %v, want to contain \"code\"", engine.Visibility.ImmediateKinds)
	}
	if engine.Stream.KeepaliveSeconds <= 0 {
		t.Errorf("keepalive_seconds = %d, want positive", engine.Stream.KeepaliveSeconds)
	}
	if engine.Stream.ClientBuffer <= 0 {
		t.Errorf("client_buffer = %d, want positive", engine.Stream.ClientBuffer)
	}
	if engine.Sessions.CleanupIntervalSeconds <= 0 {
		t.Errorf("cleanup_interval_seconds = %d, want positive", engine.Sessions.CleanupIntervalSeconds)
	}
}
