package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kova98/saletracker/api"
	"github.com/kova98/saletracker/config"
)

var (
	subEmail string
	subURL   string
)

var errUnhealthy = errors.New("server is not healthy")

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "Manage the email recipients on the server",
}

var recipientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipients",
	Args:  cobra.NoArgs,
	RunE:  runRecipientsList,
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add EMAIL",
	Short: "Add a recipient",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipientsAdd,
}

var recipientsRemoveCmd = &cobra.Command{
	Use:   "remove EMAIL",
	Short: "Remove a recipient",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecipientsRemove,
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Manage which products each recipient tracks",
}

var subscriptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions, for one recipient with --email",
	Args:  cobra.NoArgs,
	RunE:  runSubscriptionsList,
}

var subscriptionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Subscribe a recipient to a product",
	Args:  cobra.NoArgs,
	RunE:  runSubscriptionsAdd,
}

var subscriptionsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Unsubscribe a recipient from a product",
	Args:  cobra.NoArgs,
	RunE:  runSubscriptionsRemove,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the server health report, exit status 1 unless healthy",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func registerManageCommands(root *cobra.Command) {
	recipientsCmd.AddCommand(recipientsListCmd, recipientsAddCmd, recipientsRemoveCmd)

	subscriptionsListCmd.Flags().StringVar(&subEmail, "email", "", "only this recipient")
	for _, c := range []*cobra.Command{subscriptionsAddCmd, subscriptionsRemoveCmd} {
		c.Flags().StringVar(&subEmail, "email", "", "recipient email address")
		c.Flags().StringVar(&subURL, "url", "", "product page link")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("url")
	}
	subscriptionsCmd.AddCommand(subscriptionsListCmd, subscriptionsAddCmd, subscriptionsRemoveCmd)

	root.AddCommand(recipientsCmd, subscriptionsCmd, healthCmd)
}

// withClient runs fn with a configured API client, logging to LOG_FILE or stderr.
func withClient(fn func(ctx context.Context, client *api.Client) error) error {
	logger, closeLog, err := newLogger(config.Config.LogFile, "")
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	client, err := newAPIClient(logger)
	if err != nil {
		return err
	}
	return fn(ctx, client)
}

func runRecipientsList(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		emails, err := client.ListRecipients(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(emails) == 0 {
			fmt.Fprintln(out, "No recipients configured")
			return nil
		}
		for _, email := range emails {
			fmt.Fprintln(out, email)
		}
		return nil
	})
}

func runRecipientsAdd(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		msg, err := client.AddRecipient(ctx, strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		printStatus(cmd, msg, "Added "+args[0])
		return nil
	})
}

func runRecipientsRemove(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		msg, err := client.RemoveRecipient(ctx, strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		printStatus(cmd, msg, "Removed "+args[0])
		return nil
	})
}

func runSubscriptionsList(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		subs, err := client.ListSubscriptions(ctx, strings.TrimSpace(subEmail))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printed := false
		for _, email := range api.SortedEmails(subs) {
			if len(subs[email]) == 0 {
				continue
			}
			printed = true
			fmt.Fprintf(out, "%s:\n", email)
			for _, s := range subs[email] {
				if s.Company != "" {
					fmt.Fprintf(out, "  - [%s] %s\n", s.Company, s.URL)
				} else {
					fmt.Fprintf(out, "  - %s\n", s.URL)
				}
			}
		}
		if !printed {
			fmt.Fprintln(out, "No subscriptions")
		}
		return nil
	})
}

func runSubscriptionsAdd(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		msg, err := client.AddSubscription(ctx, strings.TrimSpace(subEmail), strings.TrimSpace(subURL))
		if err != nil {
			return err
		}
		printStatus(cmd, msg, "Subscribed "+subEmail)
		return nil
	})
}

func runSubscriptionsRemove(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		msg, err := client.RemoveSubscription(ctx, strings.TrimSpace(subEmail), strings.TrimSpace(subURL))
		if err != nil {
			return err
		}
		printStatus(cmd, msg, "Unsubscribed "+subEmail)
		return nil
	})
}

func runHealth(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *api.Client) error {
		report, err := client.Health(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s\n", report.Status)
		fmt.Fprintf(out, "Recipients: %d\n", report.Storage.RecipientsCount)
		fmt.Fprintf(out, "Subscriptions: %d\n", report.Storage.SubscriptionsCount)
		if len(report.Retailers.Available) > 0 {
			fmt.Fprintf(out, "Retailers: %s\n", strings.Join(report.Retailers.Available, ", "))
		}
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "Issue: %s\n", issue)
		}
		if report.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", report.Error)
		}

		if !report.Healthy() {
			return errUnhealthy
		}
		return nil
	})
}

func printStatus(cmd *cobra.Command, msg, fallback string) {
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}

// errorText is what main prints for a failed command: the server's own
// message when it sent one.
func errorText(err error) string {
	if msg, ok := api.MessageOf(err); ok {
		return msg
	}
	return err.Error()
}
