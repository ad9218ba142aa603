package internal

import (
	"context"
	"fmt"
)

const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// DeviceController manages microphone selection and recording control
type DeviceController struct {
	Client *Client
	Store  *Store
	Poller *StatusPoller
}

// NewDeviceController creates a controller. poller may be nil.
func NewDeviceController(client *Client, store *Store, poller *StatusPoller) *DeviceController {
	return &DeviceController{Client: client, Store: store, Poller: poller}
}

// LoadDevices fetches the device list and selects the first entry
func (d *DeviceController) LoadDevices(ctx context.Context) ([]Device, error) {
	devices, err := d.Client.Devices(ctx)
	if err != nil {
		d.Store.Update(func(v *ViewState) {
			v.DevicesError = "Error loading devices"
		})
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}

	d.Store.Update(func(v *ViewState) {
		v.Devices = devices
		v.DevicesError = ""
	})

	if len(devices) > 0 {
		if err := d.SelectDevice(ctx, devices[0].Index); err != nil {
			return devices, err
		}
	}
	return devices, nil
}

// SelectDevice sets the recording microphone
func (d *DeviceController) SelectDevice(ctx context.Context, index int) error {
	if err := d.Client.SelectDevice(ctx, index); err != nil {
		return fmt.Errorf("failed to select device %d: %w", index, err)
	}
	d.Store.Update(func(v *ViewState) {
		v.SelectedDevice = index
	})
	LogDebug("Selected device %d", index)
	return nil
}

// Control starts or stops recording and refreshes status right away
func (d *DeviceController) Control(ctx context.Context, action string) (string, error) {
	if action != ActionStart && action != ActionStop {
		return "", fmt.Errorf("unknown control action %q: expected %s or %s", action, ActionStart, ActionStop)
	}

	status, err := d.Client.Control(ctx, action)
	if err != nil {
		return "", fmt.Errorf("failed to %s recording: %w", action, err)
	}
	LogInfo("Control %s: %s", action, status)

	if d.Poller != nil {
		if err := d.Poller.PollOnce(ctx); err != nil {
			LogWarn("Status poll after %s failed: %v", action, err)
		}
	}
	return status, nil
}
