package protocol

// ServerConfig is what a backend gets from CreateHIDServer options.
type ServerConfig struct {
	ReconnectAddr string
	ControlPSM    int
	InterruptPSM  int
	Unpair        bool
}

// A ServerOption is a configuration function, which configures the HID server.
type ServerOption func(*ServerConfig)

// NewServerConfig applies opts over the defaults.
func NewServerConfig(opts ...ServerOption) ServerConfig {
	c := ServerConfig{
		ControlPSM:   ControlPSM,
		InterruptPSM: InterruptPSM,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// OptReconnect reconnects to a known peer instead of waiting for pairing.
func OptReconnect(addr string) ServerOption {
	return func(c *ServerConfig) {
		c.ReconnectAddr = addr
	}
}

// OptPSM overrides the control and interrupt channel PSMs.
func OptPSM(ctl, itr int) ServerOption {
	return func(c *ServerConfig) {
		c.ControlPSM = ctl
		c.InterruptPSM = itr
	}
}

// OptUnpair removes stale pairings before advertising.
func OptUnpair(unpair bool) ServerOption {
	return func(c *ServerConfig) {
		c.Unpair = unpair
	}
}
