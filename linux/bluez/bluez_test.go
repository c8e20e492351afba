package bluez

import (
	"testing"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func device(name, addr string, paired, connected bool) map[string]map[string]dbus.Variant {
	return map[string]map[string]dbus.Variant{
		Device1Interface: {
			"Name":      dbus.MakeVariant(name),
			"Address":   dbus.MakeVariant(addr),
			"Paired":    dbus.MakeVariant(paired),
			"Connected": dbus.MakeVariant(connected),
		},
		"org.freedesktop.DBus.Properties": {},
	}
}

func TestFindSwitch(t *testing.T) {
	objs := managedObjects{
		"/org/bluez/hci0": {
			"org.bluez.Adapter1": {"Address": dbus.MakeVariant("00:1A:7D:DA:71:13")},
		},
		"/org/bluez/hci0/dev_11_22_33_44_55_66": device("Pro Controller", "11:22:33:44:55:66", true, true),
		"/org/bluez/hci0/dev_7C_BB_8A_5E_2D_01": device("Nintendo Switch", "7C:BB:8A:5E:2D:01", true, false),
		"/org/bluez/hci0/dev_7C_BB_8A_5E_2D_02": device("Nintendo Switch", "7C:BB:8A:5E:2D:02", false, true),
	}

	addr, err := findSwitch(objs)
	require.NoError(t, err)
	assert.Equal(t, "7C:BB:8A:5E:2D:01", addr)
}

func TestFindSwitchPrefersConnected(t *testing.T) {
	objs := managedObjects{
		"/org/bluez/hci0/dev_7C_BB_8A_5E_2D_01": device("Nintendo Switch", "7C:BB:8A:5E:2D:01", true, false),
		"/org/bluez/hci0/dev_7C_BB_8A_5E_2D_03": device("Nintendo Switch", "7C:BB:8A:5E:2D:03", true, true),
	}

	addr, err := findSwitch(objs)
	require.NoError(t, err)
	assert.Equal(t, "7C:BB:8A:5E:2D:03", addr)
}

func TestFindSwitchNone(t *testing.T) {
	objs := managedObjects{
		"/org/bluez/hci0/dev_7C_BB_8A_5E_2D_01": device("Nintendo Switch", "not an address", true, true),
	}
	_, err := findSwitch(objs)
	assert.Equal(t, ErrNotFound, err)

	_, err = findSwitch(managedObjects{})
	assert.Equal(t, ErrNotFound, err)
}
