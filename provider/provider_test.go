package provider

import (
	"context"
	"strings"
	"testing"
)

type fakeProvider struct {
	name      string
	available bool
}

func (f *fakeProvider) Name() string                       { return f.name }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		name, _ := cfg["name"].(string)
		return &fakeProvider{name: name, available: true}, nil
	})

	p, err := reg.Create("fake", map[string]any{"name": "engine-a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name() != "engine-a" {
		t.Errorf("unexpected name: %q", p.Name())
	}
}

func TestRegistryCreateUnknown(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	factory := func(cfg map[string]any) (*fakeProvider, error) { return &fakeProvider{}, nil }
	reg.RegisterFactory("whisper", factory)
	reg.RegisterFactory("vosk", factory)

	_, err := reg.Create("wisper", nil)
	if err == nil {
		t.Fatal("expected error for unregistered factory")
	}
	if !strings.Contains(err.Error(), "vosk, whisper") {
		t.Errorf("error should list registered names sorted, got %q", err.Error())
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnavailable, "unavailable"},
		{Status(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("Status(%d).String() = %q, want %q", tc.status, got, tc.want)
		}
	}
}
