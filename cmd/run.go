package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ftl/rxpanel/caps"
	"github.com/ftl/rxpanel/cfg"
	"github.com/ftl/rxpanel/client"
	"github.com/ftl/rxpanel/prefs"
	"github.com/ftl/rxpanel/relay"
	"github.com/ftl/rxpanel/track"
	"github.com/ftl/rxpanel/vfo"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the panel relay: keep the VFO state in sync with the backend and the tracking feed.",
	Run:   run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(_ *cobra.Command, _ []string) {
	config, err := cfg.Load(*rootFlags.config)
	if err != nil {
		log.Fatal("cannot load configuration", "error", err)
	}
	if level, err := log.ParseLevel(config.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go handleCancelation(signals, cancel)

	host, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", config.Backend.Host, config.Backend.Port))
	if err != nil {
		log.Fatal("invalid backend address", "error", err)
	}

	store := vfo.NewStore(caps.DefaultRegistry(), prefs.Open(config.Prefs.File))

	c := client.KeepOpen(host, 10*time.Second)
	defer c.Disconnect()

	r := relay.New(store, c)
	if err := r.ConfigureRadio(config.Radio.CenterFrequency, config.Radio.SampleRate); err != nil {
		log.Warn("cannot configure backend", "error", err)
	}
	c.Notify(r)
	r.SetStreaming(true)

	if config.Tracking.Broker != "" {
		feed := track.NewFeed(track.FeedConfig{
			Broker:   config.Tracking.Broker,
			Topic:    config.Tracking.Topic,
			ClientID: config.Tracking.ClientID,
			Username: config.Tracking.Username,
			Password: config.Tracking.Password,
			QoS:      config.Tracking.QoS,
		}, r)
		if err := feed.Connect(); err != nil {
			log.Warn("tracking feed unavailable", "error", err)
		} else {
			defer feed.Disconnect()
		}
	}

	if config.Metrics.Listen != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(config.Metrics.Listen, nil); err != nil {
				log.Warn("metrics endpoint failed", "error", err)
			}
		}()
	}

	<-ctx.Done()
}
