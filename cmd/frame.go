package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"webframe/pkg/command"
	"webframe/pkg/config"
	"webframe/pkg/fabric"
	"webframe/pkg/frame"
	"webframe/pkg/host"
	"webframe/pkg/host/gojahost"
	"webframe/pkg/logger"

	"github.com/spf13/cobra"
)

// defaultHandlerSource answers every request by echoing it into the
// document. Used when no handler script is configured.
const defaultHandlerSource = `
function onIpc(payload) {
	var request = JSON.parse(payload);
	var line = '> ' + (request.body || '');
	return "document.body.append(" + JSON.stringify(line) + ");" +
		"document.setStatus(" + JSON.stringify('handled ' + request.method + ' ' + request.uri) + ");";
}
`

var (
	frameTitle       string
	frameContentPath string
	frameHandlerPath string
	frameUseRouter   bool
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Run a frame with a scripting handler",
	Long: "Creates a surface, binds the configured JavaScript handler to its IPC\n" +
		"requests, and runs the native loop until the surface is closed.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}
		applyFrameFlags(cfg)

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.frame")

		callback, hostCtx, err := buildCallback(cfg, appLogger)
		if err != nil {
			log.Error("Handler script invalid", "error", err)
			return
		}

		content, err := loadContent(cfg)
		if err != nil {
			log.Error("Initial content unreadable", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Every message the background consumer drains is acknowledged back
		// to the host loop over the background→host channel.
		var bridge *frame.Bridge
		ack := func(msg fabric.Message) {
			_ = bridge.Registry().Sender(fabric.KeyBackgroundToHost).Send(fabric.Message{
				Text:      "ack: " + msg.Text,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}

		opts := []frame.Option{frame.WithConsumerEffect(ack)}
		if hostCtx != nil {
			opts = append(opts, frame.WithHostContext(hostCtx))
		}
		bridge = frame.New(cfg, appLogger, opts...)
		defer bridge.Close()

		if _, err := bridge.StartHostLoop(runCtx, greetTask(), receiptTask(log)); err != nil {
			log.Error("Host loop failed to start", "error", err)
			return
		}

		go func() {
			<-runCtx.Done()
			bridge.Close()
		}()

		log.Info("Frame starting", "title", cfg.Frame.Title, "handler_entry", cfg.Frame.HandlerEntry, "router", frameUseRouter)
		if err := bridge.CreateSurface(callback, content); err != nil {
			log.Error("Frame failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(frameCmd)

	frameCmd.Flags().StringVar(&frameTitle, "title", "", "frame title (overrides config)")
	frameCmd.Flags().StringVar(&frameContentPath, "content", "", "path to the initial document content")
	frameCmd.Flags().StringVar(&frameHandlerPath, "handler", "", "path to the JavaScript handler script")
	frameCmd.Flags().BoolVar(&frameUseRouter, "router", false, "answer requests with the built-in command router instead of a script")
}

// buildCallback picks the request handler: the built-in command router, or a
// goja handler script. The router carries no runtime of its own, so only the
// script handler contributes a host execution context.
func buildCallback(cfg *config.Config, log *slog.Logger) (host.Callback, *host.Context, error) {
	if frameUseRouter {
		return builtinRouter(log), nil, nil
	}

	handler, err := buildHandler(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	return handler, handler.ExecContext(), nil
}

// builtinRouter registers the built-in demo commands.
func builtinRouter(log *slog.Logger) *command.Registry {
	registry := command.NewRegistry(log)
	_ = registry.Register("echo", func(_ context.Context, args []any) (any, error) {
		return args, nil
	})
	_ = registry.Register("time", func(_ context.Context, _ []any) (any, error) {
		return time.Now().UTC().Format(time.RFC3339), nil
	})

	return registry
}

func applyFrameFlags(cfg *config.Config) {
	if frameTitle != "" {
		cfg.Frame.Title = frameTitle
	}
	if frameContentPath != "" {
		cfg.Frame.ContentPath = frameContentPath
	}
	if frameHandlerPath != "" {
		cfg.Frame.HandlerPath = frameHandlerPath
	}
}

func buildHandler(cfg *config.Config, log *slog.Logger) (*gojahost.Host, error) {
	source := defaultHandlerSource
	if cfg.Frame.HandlerPath != "" {
		raw, err := os.ReadFile(cfg.Frame.HandlerPath)
		if err != nil {
			return nil, fmt.Errorf("read handler script: %w", err)
		}
		source = string(raw)
	}

	return gojahost.New(source, cfg.Frame.HandlerEntry, log)
}

func loadContent(cfg *config.Config) (string, error) {
	if cfg.Frame.ContentPath == "" {
		return "Welcome to WebFrame.\nType a line and press Enter to post a request.", nil
	}

	raw, err := os.ReadFile(cfg.Frame.ContentPath)
	if err != nil {
		return "", fmt.Errorf("read content file: %w", err)
	}

	return strings.TrimRight(string(raw), "\n"), nil
}

// greetTask posts one startup message into the host→background channel so
// the background consumer has something to drain immediately.
func greetTask() host.Task {
	return func(ctx context.Context, s *host.SenderHandle, _ *host.ReceiverHandle) error {
		_ = ctx
		return s.Send(fabric.Message{
			Text:      "frame started",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// receiptTask drains the background→host channel until it closes.
func receiptTask(log *slog.Logger) host.Task {
	return func(ctx context.Context, _ *host.SenderHandle, r *host.ReceiverHandle) error {
		_ = ctx
		for {
			msg, ok := r.Recv()
			if !ok {
				return nil
			}
			log.Info("Receipt from background", "message", msg.Text, "timestamp", msg.Timestamp)
		}
	}
}
