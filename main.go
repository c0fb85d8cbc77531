package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kova98/saletracker/config"
	"github.com/kova98/saletracker/enums"
	"github.com/kova98/saletracker/models"
	"github.com/kova98/saletracker/ui"
	"github.com/kova98/saletracker/workflow"
)

var (
	apiURL  string
	verbose bool

	submitEmail string
	submitLink  string
)

var errSubmissionFailed = errors.New("submission failed")

var rootCmd = &cobra.Command{
	Use:   "saletracker",
	Short: "Track a product page and get a daily email about its price",
	Long: `saletracker points a SaleTracker server at a product link and schedules
a recurring email with the product's price and sale status.

Run without arguments to open the interactive form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig(apiURL)
		if verbose {
			config.Config.LogLevel = slog.LevelDebug
		}
	},
	RunE: runInteractive,
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Update the product link and schedule the email once, without the form",
	Example: `  saletracker submit --email you@example.com \
    --link https://shop.lululemon.com/p/mens-jackets-and-outerwear/Down-For-It-All-Hoodie/_/prod9200786`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "SaleTracker server base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	submitCmd.Flags().StringVar(&submitEmail, "email", "", "recipient email address")
	submitCmd.Flags().StringVar(&submitLink, "link", "", "product page link")
	_ = submitCmd.MarkFlagRequired("email")
	_ = submitCmd.MarkFlagRequired("link")
	rootCmd.AddCommand(submitCmd)
	registerManageCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSubmissionFailed) && !errors.Is(err, errUnhealthy) {
			fmt.Fprintln(os.Stderr, "Error:", errorText(err))
		}
		os.Exit(1)
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(config.Config.LogFile, defaultInteractiveLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	reg := prometheus.NewRegistry()
	client, err := newAPIClient(logger)
	if err != nil {
		return err
	}

	controller := &ui.ProgramController{}
	wf := workflow.NewSubmitWorkflow(logger, client, controller, workflowOptions(reg))
	model := ui.NewFormModel(func(req models.SubmissionRequest) (workflow.Outcome, error) {
		return wf.Submit(ctx, req)
	}, config.Config.BannerDuration)

	program := tea.NewProgram(model, tea.WithContext(ctx))
	controller.Attach(program)

	startMetrics(ctx, logger, reg)

	logger.Info("starting interactive form", "api", config.Config.APIBaseURL)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run form")
	}
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(config.Config.LogFile, "")
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	reg := prometheus.NewRegistry()
	client, err := newAPIClient(logger)
	if err != nil {
		return err
	}
	startMetrics(ctx, logger, reg)

	wf := workflow.NewSubmitWorkflow(logger, client, ui.NewConsoleController(cmd.OutOrStdout()), workflowOptions(reg))
	out, err := wf.Submit(ctx, models.NewSubmissionRequest(submitEmail, submitLink))
	if err != nil {
		return err
	}
	if out.State != enums.StateSuccess {
		return errSubmissionFailed
	}
	return nil
}

func workflowOptions(reg prometheus.Registerer) workflow.Options {
	return workflow.Options{
		DeliveryNote: config.Config.DeliveryNote,
		CallTimeout:  config.Config.RequestTimeout,
		Registerer:   reg,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		select {
		case <-sigCh:
			slog.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
