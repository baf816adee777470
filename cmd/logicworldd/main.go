// Command logicworldd runs a standalone Logic World dedicated server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"net/http/pprof"

	"github.com/hashicorp/go-envparse"
	"github.com/spf13/pflag"

	"github.com/ecconia/logicworldd/internal/config"
	"github.com/ecconia/logicworldd/internal/logging"
	"github.com/ecconia/logicworldd/internal/metrics"
	"github.com/ecconia/logicworldd/internal/server"
)

var opt struct {
	Help bool
}

func init() {
	pflag.BoolVarP(&opt.Help, "help", "h", false, "Show this help text")
}

func main() {
	pflag.Parse()

	if pflag.NArg() > 1 || opt.Help {
		fmt.Printf("usage: %s [options] [env_file]\n\noptions:\n%s\nnote: if env_file is provided, config from the environment is ignored\n", os.Args[0], pflag.CommandLine.FlagUsages())
		if opt.Help {
			os.Exit(2)
		}
		os.Exit(0)
	}

	var e []string
	if pflag.NArg() == 0 {
		e = os.Environ()
	} else {
		if x, err := readEnv(pflag.Arg(0)); err == nil {
			e = x
		} else {
			fmt.Fprintf(os.Stderr, "error: read env file: %v\n", err)
			os.Exit(1)
		}
	}

	var c config.Config
	if err := c.UnmarshalEnv(e, false); err != nil {
		fmt.Fprintf(os.Stderr, "error: parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{
		Level:        c.LogLevel,
		Stdout:       c.LogStdout,
		StdoutPretty: c.LogStdoutPretty,
		File:         c.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: initialize logger: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New()

	if c.DebugAddr != "" {
		dbg := http.NewServeMux()
		dbg.HandleFunc("/debug/pprof/", pprof.Index)
		dbg.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		dbg.HandleFunc("/debug/pprof/profile", pprof.Profile)
		dbg.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		dbg.HandleFunc("/debug/pprof/trace", pprof.Trace)
		dbg.Handle("/metrics", m.Handler())
		go func() {
			if err := http.ListenAndServe(c.DebugAddr, dbg); err != nil {
				log.Warn().Err(err).Msg("debug server failed")
			}
		}()
	}

	w, err := server.LoadWorld(c.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load world: %v\n", err)
		os.Exit(1)
	}
	ed, err := server.LoadExtraData(log.Logger, c.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load extra data: %v\n", err)
		os.Exit(1)
	}

	d := server.New(log.Logger, server.Config{
		MaxPlayers:      uint32(c.MaxPlayers),
		RequirePassword: c.RequirePassword,
		VerifiedMode:    false,
		MOTD:            c.MOTD,
	}, m, w, ed)

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	hch := make(chan os.Signal, 1)
	signal.Notify(hch, syscall.SIGHUP)
	go func() {
		for range hch {
			log.Info().Msg("got SIGHUP, reopening log file")
			log.Reopen()
		}
	}()

	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		d.Close()
		close(stop)
	}()

	log.Info().Stringer("addr", c.ListenAddr).Str("motd", c.MOTD).Msg("starting logicworldd")
	if err := d.Run(c.ListenAddr, c.TickInterval, stop); err != nil && !errors.Is(err, net.ErrClosed) {
		fmt.Fprintf(os.Stderr, "error: run server: %v\n", err)
		os.Exit(1)
	}
}

func readEnv(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := envparse.Parse(f)
	if err != nil {
		return nil, err
	}

	var r []string
	for k, v := range m {
		r = append(r, k+"="+v)
	}
	return r, nil
}
