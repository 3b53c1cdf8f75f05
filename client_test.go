package mlfairy

import (
	"errors"
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Run("requires AppName", func(t *testing.T) {
		_, err := NewClient(Config{BaseURL: "https://api.example.com"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewClient() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("requires BaseURL", func(t *testing.T) {
		_, err := NewClient(Config{AppName: "testapp"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("NewClient() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("valid config", func(t *testing.T) {
		client, err := NewClient(Config{
			AppName: "testapp",
			BaseURL: "https://api.example.com",
			DataDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.device.SDKVersion != SDKVersion {
			t.Errorf("device sdkVersion = %q, want %q", client.device.SDKVersion, SDKVersion)
		}
	})

	t.Run("options are applied", func(t *testing.T) {
		storage := newFakeStorage()
		network := &fakeNetwork{storage: storage}

		client, err := NewClient(
			Config{AppName: "testapp", BaseURL: "https://api.example.com"},
			WithStorage(storage),
			WithNetwork(network),
		)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.storage != Storage(storage) {
			t.Error("WithStorage() was not applied")
		}
		if client.network != Network(network) {
			t.Error("WithNetwork() was not applied")
		}
	})
}

func TestClientDownload(t *testing.T) {
	storage := newFakeStorage()
	network := &fakeNetwork{storage: storage}

	client, err := NewClient(
		Config{AppName: "testapp", BaseURL: "https://api.example.com"},
		WithStorage(storage),
		WithNetwork(network),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	a := client.Download("tok")
	b := client.Download("tok")

	if a == b {
		t.Error("Download() returned the same task twice")
	}
	if a.ID() == b.ID() {
		t.Error("two tasks share an ID")
	}
	if a.Token() != "tok" {
		t.Errorf("Token() = %q, want %q", a.Token(), "tok")
	}
}
