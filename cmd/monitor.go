package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ftl/rxpanel/client"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [host]",
	Short: "Connect to the given backend and log the incoming pushes to stdout.",
	Run:   runWithClient(0, monitor),
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func monitor(ctx context.Context, c *client.Client, _ *cobra.Command, _ []string) {
	c.Notify(new(pushLogger))
	<-ctx.Done()
}

type pushLogger struct{}

func (l *pushLogger) Message(msg client.Message) {
	log.Info("push", "event", msg.Event, "payload", string(msg.Payload))
}

func (l *pushLogger) Transcription(t client.Transcription) {
	log.Info("transcription", "vfo", t.VFONumber, "language", t.Language, "final", t.Final, "text", t.Text)
}
