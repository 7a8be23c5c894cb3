package ebina

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nozomi-hiragi/ebina-go/internal/wire"
)

// ListDevices returns the WebAuthn credentials registered for the
// current account.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	resp, err := c.Do(ctx, http.MethodGet, pathDevices, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("list devices: unexpected status %d", resp.Status)
	}

	var devices []wire.Device
	if err := resp.Decode(&devices); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a registered credential by name. The endpoint is
// step-up gated; the server may demand a fresh proof before deleting.
func (c *Client) DeleteDevice(ctx context.Context, name string) error {
	resp, err := c.StepUp(ctx, http.MethodDelete, pathDevices+"/"+name, nil)
	if err != nil {
		return err
	}
	switch {
	case resp.OK():
		return nil
	case resp.Status == http.StatusNotFound:
		return fmt.Errorf("delete device %q: not found", name)
	default:
		return fmt.Errorf("delete device %q: unexpected status %d", name, resp.Status)
	}
}

// RegisterDevice creates and registers a new WebAuthn credential under
// the given name: the server supplies creation options, the
// authenticator runs the create-credential ceremony, and the attestation
// goes back to the same endpoint under the session the options arrived
// with.
func (c *Client) RegisterDevice(ctx context.Context, name string) error {
	return c.boundary.Run(ctx, func(ctx context.Context) error {
		return c.registerDevice(ctx, name)
	})
}

func (c *Client) registerDevice(ctx context.Context, name string) error {
	first, err := c.dispatch.do(ctx, http.MethodPost, pathDeviceRegister,
		struct {
			Name string `json:"name"`
		}{Name: name})
	if err != nil {
		return err
	}
	if !first.OK() {
		return fmt.Errorf("register device %q: unexpected status %d", name, first.Status)
	}

	reg, err := wire.DecodeRegistrationOptions(first.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeRequest, err)
	}

	result, err := c.ceremonies.create(ctx, reg.Options)
	if err != nil {
		return err
	}

	second, err := c.dispatch.do(ctx, http.MethodPost, pathDeviceRegister, wire.RegisterAnswer{
		Name:      name,
		Result:    result,
		SessionID: reg.SessionID,
	})
	if err != nil {
		return err
	}
	switch {
	case second.OK():
		return nil
	case second.Status == http.StatusGone:
		return fmt.Errorf("%w: stale challenge", ErrChallengeVerification)
	case second.Status == http.StatusForbidden:
		return ErrChallengeVerification
	default:
		return fmt.Errorf("register device %q: unexpected status %d", name, second.Status)
	}
}

// EnableDevice marks a registered credential as usable for login.
func (c *Client) EnableDevice(ctx context.Context, name string) error {
	return c.setDeviceEnabled(ctx, name, true)
}

// DisableDevice marks a registered credential as unusable for login
// without deleting it.
func (c *Client) DisableDevice(ctx context.Context, name string) error {
	return c.setDeviceEnabled(ctx, name, false)
}

func (c *Client) setDeviceEnabled(ctx context.Context, name string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}

	resp, err := c.Do(ctx, http.MethodPost, pathDevices+"/"+name+"/"+action, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%s device %q: unexpected status %d", action, name, resp.Status)
	}
	return nil
}
