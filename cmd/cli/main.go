package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/infrastructure/auth"
)

type options struct {
	baseURL  string
	token    string
	timeout  time.Duration
	retryFor time.Duration
	asJSON   bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bankledger",
		Short:         "Bank ledger CLI",
		Long:          `A command line interface for the bank ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("BANKLEDGER_URL", "http://localhost:8080"), "Base URL of the ledger API")
	flags.StringVar(&opts.token, "token", os.Getenv("BANKLEDGER_TOKEN"), "Bearer token")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.DurationVar(&opts.retryFor, "retry", 5*time.Second, "Retry failed requests for up to this long (0 disables)")
	flags.BoolVar(&opts.asJSON, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		accountCmd(opts),
		movementCmd(opts, "deposit", "Deposit money into an account"),
		movementCmd(opts, "withdraw", "Withdraw money from an account"),
		transferCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout, o.retryFor)
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var holder, initial string
	create := &cobra.Command{
		Use:   "create <account-number>",
		Short: "Open a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := parseAmount(initial)
			if err != nil {
				return err
			}

			var resp dto.CreateAccountResponse
			err = opts.client().do(cmd.Context(), "POST", "/api/v1/accounts", map[string]any{
				"account_number":  args[0],
				"account_holder":  holder,
				"initial_balance": balance,
			}, &resp)
			if err != nil {
				return err
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	create.Flags().StringVar(&holder, "holder", "", "Account holder name")
	create.Flags().StringVar(&initial, "initial-balance", "0", "Opening balance")
	_ = create.MarkFlagRequired("holder")

	get := &cobra.Command{
		Use:   "get <account-number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := opts.client().do(cmd.Context(), "GET", "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printAccounts(cmd.OutOrStdout(), []dto.AccountResponse{resp})
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp []dto.AccountResponse
			if err := opts.client().do(cmd.Context(), "GET", "/api/v1/accounts", nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printAccounts(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	balance := &cobra.Command{
		Use:   "balance <account-number>",
		Short: "Show the current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if err := opts.client().do(cmd.Context(), "GET", "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance", nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: $%s\n", resp.AccountNumber, resp.Balance)
			return nil
		},
	}

	var limit int
	history := &cobra.Command{
		Use:   "history <account-number>",
		Short: "Show recent transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/transactions?limit=" + strconv.Itoa(limit)

			var resp []dto.TransactionResponse
			if err := opts.client().do(cmd.Context(), "GET", path, nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printTransactions(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", 10, "Maximum number of transactions")

	cmd.AddCommand(create, get, list, balance, history)
	return cmd
}

func movementCmd(opts *options, name, short string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   name + " <account-number> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			body := map[string]any{"amount": amount}
			if description != "" {
				body["description"] = description
			}

			var resp dto.MovementResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/" + name
			if err := opts.client().do(cmd.Context(), "POST", path, body, &resp); err != nil {
				return err
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s. New balance: $%s\n", resp.Message, resp.NewBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Optional description")

	return cmd
}

func transferCmd(opts *options) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "transfer <from-account> <to-account> <amount>",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			body := map[string]any{
				"from_account": args[0],
				"to_account":   args[1],
				"amount":       amount,
			}
			if description != "" {
				body["description"] = description
			}

			var resp dto.TransferResponse
			if err := opts.client().do(cmd.Context(), "POST", "/api/v1/transfer", body, &resp); err != nil {
				return err
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: $%s\n%s: $%s\n", args[0], resp.FromAccountBalance, args[1], resp.ToAccountBalance)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Optional description")

	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every balance from its transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationResponse
			if err := opts.client().do(cmd.Context(), "GET", "/api/v1/ledger/reconciliation", nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reconciled %d of %d accounts\n", resp.ReconciledAccounts, resp.TotalAccounts)
			for _, d := range resp.Discrepancies {
				fmt.Fprintf(out, "  %s: recorded $%s, calculated $%s, difference $%s\n",
					d.AccountNumber, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}
			if len(resp.Discrepancies) > 0 || !resp.LedgerConsistent {
				return fmt.Errorf("reconciliation FAILED: %d discrepancies", len(resp.Discrepancies))
			}
			fmt.Fprintln(out, "Reconciliation PASSED")
			return nil
		},
	}

	cmd.AddCommand(consistency, reconcile)
	return cmd
}

func checkConsistency(ctx context.Context, out io.Writer, opts *options) error {
	var resp dto.ConsistencyResponse
	err := opts.client().do(ctx, "GET", "/api/v1/ledger/consistency", nil, &resp)
	if isStatus(err, 409) {
		return fmt.Errorf("consistency check FAILED: %w", err)
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		return printJSON(out, resp)
	}

	fmt.Fprintf(out, "Consistency check PASSED\n")
	fmt.Fprintf(out, "Total balance: $%s (expected $%s)\n", resp.TotalBalance, resp.ExpectedBalance)
	return nil
}

func tokenCmd() *cobra.Command {
	var secret, role, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, auth.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleOperator), "Role: operator or viewer")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func printAccounts(out io.Writer, accounts []dto.AccountResponse) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tHOLDER\tBALANCE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.AccountNumber, truncate(a.AccountHolder, 32), a.Balance)
	}
	w.Flush()
}

func printTransactions(out io.Writer, txns []dto.TransactionResponse) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tAMOUNT\tFROM\tTO\tDESCRIPTION")
	for _, t := range txns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Timestamp.Format(time.RFC3339), t.TransactionType, t.Amount,
			orDash(t.FromAccount), orDash(t.ToAccount), truncate(t.Description, 40))
	}
	w.Flush()
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
