package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"webframe/pkg/config"
	"webframe/pkg/fabric"
	"webframe/pkg/frame"
	"webframe/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	emitAsync bool
	emitRaw   bool
)

var emitCmd = &cobra.Command{
	Use:   "emit [message]",
	Short: "Send one message through the channel fabric",
	Long: "Builds a bridge, sends one message on the host→background channel, and\n" +
		"waits for the background consumer to drain it.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.emit")

		payload, err := buildPayload(args[0])
		if err != nil {
			log.Error("Payload invalid", "error", err)
			return
		}

		drained := make(chan fabric.Message, 1)
		bridge := frame.New(cfg, appLogger, frame.WithConsumerEffect(func(msg fabric.Message) {
			drained <- msg
		}))
		defer bridge.Close()

		if emitAsync {
			err = <-bridge.EmitAsync(payload)
		} else {
			err = bridge.Emit(payload)
		}
		if err != nil {
			log.Error("Emit failed", "error", err)
			return
		}

		select {
		case msg := <-drained:
			log.Info("Message drained", "message", msg.Text, "timestamp", msg.Timestamp)
		case <-time.After(5 * time.Second):
			log.Error("Consumer never drained the message")
		}
	},
}

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().BoolVar(&emitAsync, "async", false, "resolve the emit asynchronously")
	emitCmd.Flags().BoolVar(&emitRaw, "raw", false, "treat the argument as a raw JSON payload")
}

func buildPayload(arg string) (string, error) {
	if emitRaw {
		return arg, nil
	}

	raw, err := json.Marshal(map[string]string{
		"message":   arg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	return string(raw), nil
}
