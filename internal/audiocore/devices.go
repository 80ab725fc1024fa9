package audiocore

import (
	"runtime"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/tphakala/plughost/internal/errors"
)

// DeviceInfo holds information about an audio device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        malgo.DeviceID
	IsDefault bool
}

// backendFromName maps a configured backend name to the malgo backend.
// "auto" picks the platform's native backend.
func backendFromName(name string) (malgo.Backend, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return platformBackend()
	case "wasapi":
		return malgo.BackendWasapi, nil
	case "alsa":
		return malgo.BackendAlsa, nil
	case "coreaudio":
		return malgo.BackendCoreaudio, nil
	case "pulseaudio":
		return malgo.BackendPulseaudio, nil
	case "jack":
		return malgo.BackendJack, nil
	case "null":
		return malgo.BackendNull, nil
	default:
		return malgo.BackendNull, errors.Newf("unknown audio backend %q", name).
			Component("audiocore").
			Category(errors.CategoryConfiguration).
			Build()
	}
}

func platformBackend() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, errors.Newf("unsupported operating system %s", runtime.GOOS).
			Component("audiocore").
			Category(errors.CategoryAudioDevice).
			Build()
	}
}

// backendExclusive reports whether the backend exposes a single duplex
// endpoint, forcing input and output onto the same device. JACK is the one
// such backend malgo reaches; device names are also served from the
// startup snapshot there because live re-enumeration is disruptive.
func backendExclusive(name string) bool {
	return strings.ToLower(name) == "jack"
}

// enumerateDevices lists devices of the given type on an open context.
func enumerateDevices(ctx *malgo.AllocatedContext, deviceType malgo.DeviceType) ([]DeviceInfo, error) {
	infos, err := ctx.Devices(deviceType)
	if err != nil {
		return nil, errors.New(err).
			Component("audiocore").
			Category(errors.CategoryAudioDevice).
			Context("operation", "enumerate_devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		name := infos[i].Name()
		// Skip the discard/null device some backends expose.
		if strings.Contains(name, "Discard all samples") {
			continue
		}
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      name,
			ID:        infos[i].ID,
			IsDefault: infos[i].IsDefault != 0,
		})
	}
	return devices, nil
}

// selectDevice finds a device matching the given name; empty, "default"
// and "sysdefault" pick the backend's default device.
func selectDevice(devices []DeviceInfo, deviceName string) (*DeviceInfo, error) {
	if deviceName == "" || deviceName == "default" || deviceName == "sysdefault" {
		for i := range devices {
			if devices[i].IsDefault {
				return &devices[i], nil
			}
		}
		if len(devices) > 0 {
			return &devices[0], nil
		}
		return nil, errors.Newf("no audio devices available").
			Component("audiocore").
			Category(errors.CategoryAudioDevice).
			Build()
	}
	for i := range devices {
		if devices[i].Name == deviceName {
			return &devices[i], nil
		}
	}
	// Fall back to a prefix match; ALSA decorates names with card indexes.
	for i := range devices {
		if strings.HasPrefix(devices[i].Name, deviceName) {
			return &devices[i], nil
		}
	}
	return nil, errors.Newf("audio device %q not found", deviceName).
		Component("audiocore").
		Category(errors.CategoryNotFound).
		Context("device_name", deviceName).
		Build()
}

// deviceNames projects the name column of a device list.
func deviceNames(devices []DeviceInfo) []string {
	names := make([]string, len(devices))
	for i := range devices {
		names[i] = devices[i].Name
	}
	return names
}
