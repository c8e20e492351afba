package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/config"
	"github.com/f-ready/joytransfer-with-nfc/linux/bluez"
	"github.com/f-ready/joytransfer-with-nfc/mailbox"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
	"github.com/f-ready/joytransfer-with-nfc/protocol/sim"
	"github.com/f-ready/joytransfer-with-nfc/supervisor"
	"github.com/f-ready/joytransfer-with-nfc/worker"
)

const banner = "  Joy Transfer  v0.1"

// flags shared by the supervisor and the worker, forwarded on re-exec
var passthroughFlags = []string{"config", "log-level", "backend"}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "config file (toml, yaml or json)"},
		cli.StringFlag{Name: "log-level", Usage: "panic, fatal, error, warn, info, debug or trace"},
		cli.StringFlag{Name: "backend", Usage: "controller protocol backend"},
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "joytransfer"
	app.Usage = "emulate a Switch Pro Controller and drive it from a console"
	app.Version = "0.1"
	app.Flags = append(commonFlags(),
		cli.BoolFlag{Name: "auto", Usage: "press A on the grip menu without waiting for the operator"},
		cli.StringFlag{
			Name:  "reconnect_bt_addr, r",
			Usage: `The Switch console Bluetooth address (or "auto" for automatic detection), for reconnecting as an already paired controller.`,
		},
	)
	app.Action = runSupervisor
	app.Commands = []cli.Command{
		{
			Name:   "worker",
			Usage:  "run one controller session, driven over stdin/stdout",
			Hidden: true,
			Flags: append(commonFlags(),
				cli.StringFlag{Name: "id"},
				cli.IntFlag{Name: "ordinal"},
				cli.StringFlag{Name: "peer"},
				cli.BoolFlag{Name: "auto"},
			),
			Action: runWorker,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		joytransfer.GetLogger().Error(err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and the log level.
func setup(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, joytransfer.SetLogLevel(cfg.LogLevel)
}

func passthrough(c *cli.Context) []string {
	var args []string
	for _, name := range passthroughFlags {
		if c.IsSet(name) {
			args = append(args, "--"+name, c.String(name))
		}
	}
	return args
}

func runSupervisor(c *cli.Context) error {
	addr := c.String("reconnect_bt_addr")
	if addr != "" {
		if err := joytransfer.ValidReconnectAddr(addr); err != nil {
			return errors.Wrap(err, "-r")
		}
	}

	cfg, err := setup(c)
	if err != nil {
		return err
	}

	fmt.Println(banner)

	con, err := supervisor.NewConsole()
	if err != nil {
		return err
	}
	defer con.Close()

	t := cfg.PulseTiming()
	sup := supervisor.New(supervisor.Config{
		ReconnectAddr: addr,
		AutoGreet:     c.Bool("auto"),
		ExitKeywords:  cfg.ExitKeywords,
		Pacing:        t.Pacing,
		Settle:        t.Settle,
	}, &supervisor.ExecSpawner{Args: passthrough(c)}, con)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err = sup.Run(joytransfer.WithSigHandler(ctx, cancel))
	return err
}

func runWorker(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	b, err := protocol.Open(cfg.Backend)
	if err != nil {
		return err
	}
	if sb, ok := b.(*sim.Backend); ok && cfg.Sim.PeerAddr != "" {
		sb.PeerAddr = cfg.Sim.PeerAddr
	}

	desc := joytransfer.Descriptor{
		ID:        c.String("id"),
		Ordinal:   c.Int("ordinal"),
		PeerAddr:  c.String("peer"),
		AutoGreet: c.Bool("auto"),
	}

	// stdout belongs to the mailbox, everything else goes to stderr
	end := mailbox.NewWorkerEnd(os.Stdin, os.Stdout)
	sess, err := worker.New(desc, b, cfg.ControllerType(), end,
		joytransfer.OptTiming(cfg.PulseTiming()),
		joytransfer.OptGreetButtons(cfg.AutoGreetButton, cfg.GreetButtons...),
		joytransfer.OptAddrResolver(bluez.FindSwitch),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return sess.Serve(joytransfer.WithSigHandler(ctx, cancel))
}
