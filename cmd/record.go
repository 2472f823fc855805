package cmd

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ftl/rxpanel/client"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Control audio recording on the backend.",
}

var recordStartCmd = &cobra.Command{
	Use:   "start <vfo> [host]",
	Short: "Start recording the given VFO's audio.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runWithClient(1, recordStart),
}

var recordStopCmd = &cobra.Command{
	Use:   "stop <vfo> [host]",
	Short: "Stop recording the given VFO's audio.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runWithClient(1, recordStop),
}

func init() {
	recordCmd.AddCommand(recordStartCmd, recordStopCmd)
	rootCmd.AddCommand(recordCmd)
}

func recordStart(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	number := parseVFOArg(args[0])
	if err := c.StartAudioRecording(number); err != nil {
		log.Fatal("cannot start recording", "vfo", number, "error", err)
	}
	log.Info("recording started", "vfo", number)
}

func recordStop(_ context.Context, c *client.Client, _ *cobra.Command, args []string) {
	number := parseVFOArg(args[0])
	if err := c.StopAudioRecording(number); err != nil {
		log.Fatal("cannot stop recording", "vfo", number, "error", err)
	}
	log.Info("recording stopped", "vfo", number)
}

func parseVFOArg(arg string) int {
	number, err := strconv.Atoi(arg)
	if err != nil {
		log.Fatal("invalid VFO number", "arg", arg)
	}
	return number
}
