package internal

import (
	"context"
	"net/http"
	"testing"

	"github.com/iksnae/meeting-client/testutil"
)

func TestDeviceController_LoadDevicesSelectsFirst(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetDevices([]testutil.FakeDevice{{Index: 3, Name: "Mic A"}, {Index: 5, Name: "Mic B"}})

	store := NewStore()
	d := NewDeviceController(NewTestClient(t, srv.URL), store, nil)

	devices, err := d.LoadDevices(context.Background())
	if err != nil {
		t.Fatalf("LoadDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if srv.SelectedDevice() != 3 {
		t.Errorf("server selected = %d, want 3", srv.SelectedDevice())
	}
	if v := store.Snapshot(); v.SelectedDevice != 3 || len(v.Devices) != 2 {
		t.Errorf("state = selected %d, %d devices", v.SelectedDevice, len(v.Devices))
	}
}

func TestDeviceController_LoadDevicesEmpty(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetDevices(nil)

	d := NewDeviceController(NewTestClient(t, srv.URL), NewStore(), nil)
	if _, err := d.LoadDevices(context.Background()); err != nil {
		t.Fatalf("LoadDevices() error = %v", err)
	}
	if n := srv.CountRequests(http.MethodPost, "/config/device"); n != 0 {
		t.Errorf("POST /config/device requests = %d, want 0", n)
	}
}

func TestDeviceController_LoadDevicesFailure(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.Fail(http.MethodGet, "/devices", http.StatusServiceUnavailable)

	store := NewStore()
	d := NewDeviceController(NewTestClient(t, srv.URL), store, nil)
	if _, err := d.LoadDevices(context.Background()); err == nil {
		t.Fatal("LoadDevices() error = nil, want error")
	}
	if store.Snapshot().DevicesError == "" {
		t.Error("DevicesError not set")
	}
}

func TestDeviceController_Control(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	client := NewTestClient(t, srv.URL)
	store := NewStore()
	poller := NewStatusPoller(client, store, nil)
	d := NewDeviceController(client, store, poller)
	ctx := context.Background()

	status, err := d.Control(ctx, ActionStart)
	if err != nil {
		t.Fatalf("Control(start) error = %v", err)
	}
	if status != "started" {
		t.Errorf("status = %q, want started", status)
	}
	if !store.Snapshot().Recording {
		t.Error("state not recording after start; immediate poll missing")
	}

	if _, err := d.Control(ctx, ActionStop); err != nil {
		t.Fatalf("Control(stop) error = %v", err)
	}
	if store.Snapshot().Recording {
		t.Error("state still recording after stop")
	}

	if _, err := d.Control(ctx, "pause"); err == nil {
		t.Error("Control(pause) error = nil, want error")
	}
	if n := srv.CountRequests(http.MethodPost, "/control/pause"); n != 0 {
		t.Errorf("POST /control/pause requests = %d, want 0", n)
	}
}
