package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/payment"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show the available subscription plans",
	Args:  cobra.NoArgs,
	RunE:  runPlans,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <reference|callback-url>",
	Short: "Confirm a payment by reference",
	Long: `Checks a payment with the backend and upgrades the account once it is
confirmed. Accepts either the bare reference or the gateway callback URL
("https://.../payment?reference=...").`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runPlans(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	plans, err := newClient(cfg).Plans(ctx)
	if err != nil {
		return fmt.Errorf("failed to load plans: %s", api.Reason(err))
	}

	out := cmd.OutOrStdout()
	for _, p := range payment.SortPlans(plans) {
		fmt.Fprintf(out, "%-14s %-12s %10s/%s  %s messages\n",
			p.Key, p.Name, payment.FormatPrice(p.Price), p.Interval, humanize.Comma(int64(p.MessageLimit)))
	}
	return nil
}

// runVerify feeds the reference through the payment controller as a callback
// verification, so repeated or failed confirmations behave as in the TUI.
func runVerify(cmd *cobra.Command, args []string) error {
	reference := payment.ReferenceFromCallback(args[0])
	if reference == "" {
		return fmt.Errorf("no payment reference in %q", args[0])
	}

	_, client, err := loggedInClient()
	if err != nil {
		return err
	}

	ctrl := payment.New(client)
	ctrl.Update(ctrl.Verify(reference, payment.SourceCallback)())

	out := cmd.OutOrStdout()
	if ctrl.Status() != payment.StatusSucceeded {
		return fmt.Errorf("%s: %s", reference, ctrl.Banner())
	}
	fmt.Fprintln(out, ctrl.SuccessMessage())

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()
	user, err := client.Me(ctx)
	if err != nil {
		return fmt.Errorf("payment confirmed, but the profile refresh failed: %s", api.Reason(err))
	}
	printUser(out, *user)
	return nil
}
