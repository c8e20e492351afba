// Package bluez looks up the console BlueZ already knows about, for the
// "auto" reconnect address.
package bluez

import (
	"context"
	"sort"
	"strings"

	"github.com/godbus/dbus"
	"github.com/pkg/errors"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
)

const (
	BusName          = "org.bluez"
	Device1Interface = "org.bluez.Device1"

	getManagedObjects = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
)

// ConsoleName is the alias a Switch advertises.
const ConsoleName = "Nintendo Switch"

// ErrNotFound is returned when no paired console is known to BlueZ.
var ErrNotFound = errors.New("no paired Nintendo Switch found")

type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// FindSwitch asks BlueZ on the system bus for a paired console and returns
// its address. It has the joytransfer.AddrResolver signature.
func FindSwitch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	conn, err := dbus.SystemBus()
	if err != nil {
		return "", errors.Wrap(err, "can't connect to system bus")
	}

	var objs managedObjects
	call := conn.Object(BusName, "/").Call(getManagedObjects, 0)
	if call.Err != nil {
		return "", errors.Wrap(call.Err, "get current objects")
	}
	if err := call.Store(&objs); err != nil {
		return "", errors.Wrap(err, "get current objects")
	}

	return findSwitch(objs)
}

var _ joytransfer.AddrResolver = FindSwitch

// findSwitch picks the first paired console by object path, preferring a
// connected one.
func findSwitch(objs managedObjects) (string, error) {
	paths := make([]string, 0, len(objs))
	for p := range objs {
		paths = append(paths, string(p))
	}
	sort.Strings(paths)

	var found string
	for _, p := range paths {
		dev, ok := objs[dbus.ObjectPath(p)][Device1Interface]
		if !ok {
			continue
		}
		if !boolProp(dev, "Paired") || !isConsole(dev) {
			continue
		}
		addr := stringProp(dev, "Address")
		if _, err := joytransfer.ParseAddr(addr); err != nil {
			continue
		}
		if boolProp(dev, "Connected") {
			return addr, nil
		}
		if found == "" {
			found = addr
		}
	}
	if found == "" {
		return "", ErrNotFound
	}
	return found, nil
}

func isConsole(dev map[string]dbus.Variant) bool {
	for _, k := range []string{"Name", "Alias"} {
		if strings.Contains(stringProp(dev, k), ConsoleName) {
			return true
		}
	}
	return false
}

func stringProp(dev map[string]dbus.Variant, key string) string {
	v, ok := dev[key]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

func boolProp(dev map[string]dbus.Variant, key string) bool {
	v, ok := dev[key]
	if !ok {
		return false
	}
	b, _ := v.Value().(bool)
	return b
}
