package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"salon-booking-backend/pkg/dispatcher"
	"salon-booking-backend/pkg/logger"
	"salon-booking-backend/pkg/validation"

	"github.com/spf13/cobra"
)

var (
	endpoint string
	timeout  time.Duration
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bookingctl",
	Short: "Submit salon bookings and academy applications from the terminal",
	Long: `bookingctl sends the same forms as the website to the submission endpoint.
Fields are validated locally first; the server validates them again.

Example:
  bookingctl booking --name "Asha Rao" --phone "+91 98765 43210" \
    --email asha@example.com --service Haircut --appointment-date 2030-01-01`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{Level: logLevel})
	},
}

var bookingFields = []string{"name", "phone", "email", "service", "appointment_date", "appointment_time", "message"}

var careerFields = []string{"name", "phone", "email", "program", "age", "education", "batch", "message"}

var bookingCmd = &cobra.Command{
	Use:   "booking",
	Short: "Request a salon appointment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(cmd, validation.FormBooking, bookingFields)
	},
}

var careerCmd = &cobra.Command{
	Use:   "career",
	Short: "Apply to an academy program",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submit(cmd, validation.FormCareerApplication, careerFields)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "http://localhost:8080/v1/submissions", "Submission endpoint URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	for _, f := range bookingFields {
		bookingCmd.Flags().String(flagName(f), "", fieldUsage(f))
	}
	for _, f := range careerFields {
		careerCmd.Flags().String(flagName(f), "", fieldUsage(f))
	}

	rootCmd.AddCommand(bookingCmd, careerCmd)
}

func submit(cmd *cobra.Command, formType string, fields []string) error {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v, _ := cmd.Flags().GetString(flagName(f))
		values[f] = v
	}

	presenter := newTerminalPresenter(cmd.OutOrStdout())
	d := dispatcher.New(formType, &flagForm{values: values}, presenter,
		dispatcher.NewHTTPTransport(endpoint, timeout))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Debug("Submitting form", "form_type", formType, "endpoint", endpoint)
	res, err := d.Submit(ctx)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case dispatcher.Blocked:
		fmt.Fprintln(cmd.OutOrStdout(), "Please fix the following:")
		presenter.flushFieldErrors()
		return fmt.Errorf("%d field(s) invalid", len(res.FieldErrors))
	case dispatcher.Failure:
		return fmt.Errorf("submission failed")
	}
	return nil
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func fieldUsage(field string) string {
	if rule, ok := validation.Rules[field]; ok {
		return fmt.Sprintf("%s (%s)", strings.ReplaceAll(field, "_", " "), strings.ToLower(rule.Message))
	}
	return strings.ReplaceAll(field, "_", " ")
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
