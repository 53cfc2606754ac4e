package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/clinic"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/config"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/logging"
	"github.com/Vovarama1992/clinic-ai-proxy/internal/platform/lambdaproxy"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-ai-proxy",
		Short:        "AI action proxy for the clinic UI",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(lambdaCmd())
	rootCmd.AddCommand(invokeCmd(os.Stdin, os.Stdout))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, !cfg.IsProduction())
	return newApp(ctx, cfg, logger, config.APIKey)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func lambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an API Gateway HTTP API function",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			lambda.Start(lambdaproxy.New(a.router()).Handle)
			return nil
		},
	}
}

func invokeCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var action, dataPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one action and print the JSON result",
		Example: `  clinic-ai-proxy invoke --action symptom-check --data patient.json
  echo '{"diagnosis":"Flu","medicines":[]}' | clinic-ai-proxy invoke --action prescription-explain --data -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			return invoke(cmd.Context(), a.svc, a.log, action, dataPath, stdin, stdout)
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "symptom-check | prescription-explain | risk-flag")
	cmd.Flags().StringVar(&dataPath, "data", "-", "path to the JSON data object, - for stdin")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

// invoke prints the same body the HTTP endpoint would return. An error
// envelope is printed too, and reported as a failed command.
func invoke(ctx context.Context, svc clinic.Service, log zerolog.Logger, action, dataPath string, stdin io.Reader, stdout io.Writer) error {
	var data []byte
	var err error
	if dataPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(dataPath)
	}
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	body, err := json.Marshal(struct {
		Action string          `json:"action"`
		Data   json.RawMessage `json:"data"`
	}{Action: action, Data: json.RawMessage(orNull(data))})
	if err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}

	result, err := handleBody(ctx, svc, body)
	if err != nil {
		e := clinic.AsError(err)
		log.Debug().Str("kind", string(e.Kind)).Int("status", e.Status).Msg("invoke failed")
		out, _ := json.Marshal(map[string]string{"error": e.Message})
		fmt.Fprintln(stdout, string(out))
		return fmt.Errorf("%s (status %d)", e.Message, e.Status)
	}
	fmt.Fprintln(stdout, string(result))
	return nil
}

func handleBody(ctx context.Context, svc clinic.Service, body []byte) (json.RawMessage, error) {
	req, err := clinic.ParseRequest(body)
	if err != nil {
		return nil, err
	}
	return svc.Handle(ctx, req)
}

func orNull(b []byte) []byte {
	if len(bytes.TrimSpace(b)) == 0 {
		return []byte("null")
	}
	return b
}
