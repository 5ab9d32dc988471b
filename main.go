/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-buffers/engine"
	"github.com/spaghettifunk/anima-buffers/engine/config"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/null"
	"github.com/spaghettifunk/anima-buffers/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	frames := flag.Int("frames", -1, "frames to render, 0 runs until interrupted (overrides the configuration)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			core.LogFatal("%s", err)
		}
	}
	if *frames >= 0 {
		cfg.Testbed.Frames = *frames
	}

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal("%s", err)
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.Stop()
	}()

	tb := testbed.NewTestScene(cfg.Testbed.GridSize)
	if err := e.Run(tb.Game, cfg.Testbed.Frames); err != nil {
		core.LogFatal("%s", err)
	}

	if nb, ok := e.Backend().(*null.Backend); ok {
		t := nb.Totals()
		core.LogInfo("%d frames: %d draws, %d instances, %d uploads (%d bytes), %d bytes drawn from client memory",
			t.Frame, t.Draws, t.Instances, t.Uploads, t.UploadedBytes, t.ClientBytes)
	}
}
