package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wallet/internal/core"
	"wallet/internal/services"
)

func openWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-wallet",
		Short: "Open a zero-balance wallet for --owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				w, err := ledger.Wallets.OpenWallet(ctx, owner)
				if err != nil {
					return err
				}
				return printWallet(w)
			})
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance of --owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				w, err := ledger.Wallets.GetBalance(ctx, owner)
				if err != nil {
					return err
				}
				return printWallet(w)
			})
		},
	}
}

func recordCmd() *cobra.Command {
	var (
		kind, amount, description string
		categoryID                int64
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an income or expense for --owner",
		Example: `  walletctl record --owner alice --kind income --amount 100.00 --description salary
  walletctl record --owner alice --kind expense --amount 12.50 --category 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			k, err := core.ParseKind(kind)
			if err != nil {
				return err
			}
			m, err := core.ParseMoney(amount)
			if err != nil {
				return &core.ValidationError{Field: "amount", Value: amount, Err: err}
			}

			in := services.NewTransaction{Kind: k, Amount: m, Description: description}
			if cmd.Flags().Changed("category") {
				in.CategoryID = &categoryID
			}

			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				t, err := ledger.Transactions.CreateTransaction(ctx, owner, in)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(t)
				}
				fmt.Printf("recorded #%d %s %s\n", t.ID, t.Kind, t.Amount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "INCOME or EXPENSE")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func transactionsCmd() *cobra.Command {
	var (
		kind, from, to string
		categoryID     int64
	)

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions of --owner, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			var f core.TransactionFilter
			if kind != "" {
				if f.Kind, err = core.ParseKind(kind); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("category") {
				f.CategoryID = &categoryID
			}
			if f.From, err = core.ParseTimeBound("from", from, false); err != nil {
				return err
			}
			if f.To, err = core.ParseTimeBound("to", to, true); err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				txs, err := ledger.Transactions.ListTransactions(ctx, owner, f)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(txs)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintln(w, "ID\tDATE\tKIND\tAMOUNT\tCATEGORY\tDESCRIPTION")
				for _, t := range txs {
					cat := "-"
					if t.CategoryID != nil {
						cat = strconv.FormatInt(*t.CategoryID, 10)
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.CreatedAt.Local().Format(time.DateTime), t.Kind, t.Amount, cat, t.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only INCOME or EXPENSE")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "only this category id")
	cmd.Flags().StringVar(&from, "from", "", "lower bound, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "upper bound, RFC 3339 or YYYY-MM-DD (whole day)")
	return cmd
}

func payCmd() *cobra.Command {
	var amount, method, recipient, description string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Process a payment from the wallet of --owner",
		Example: `  walletctl pay --owner alice --amount 50 --method PIX --recipient Bob
  walletctl pay --owner alice --amount 80 --method BILL --description "electricity"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			m, err := core.ParseMoney(amount)
			if err != nil {
				return &core.ValidationError{Field: "amount", Value: amount, Err: err}
			}

			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				res, err := ledger.Payments.ProcessPayment(ctx, owner, core.PaymentRequest{
					Amount:      m,
					Method:      core.PaymentMethod(method),
					Recipient:   recipient,
					Description: description,
				})
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(res)
				}
				fmt.Printf("payment #%d %s: %s\n", res.ID, res.Amount, res.Description)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 50.00")
	cmd.Flags().StringVar(&method, "method", "", "PIX, TRANSFER or BILL")
	cmd.Flags().StringVar(&recipient, "recipient", "", "payee")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func paymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List payments of --owner as derived from expense descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				payments, err := ledger.Payments.ListPayments(ctx, owner)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(payments)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintln(w, "ID\tDATE\tMETHOD\tRECIPIENT\tAMOUNT\tSTATUS")
				for _, p := range payments {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						p.ID, p.CreatedAt.Local().Format(time.DateTime), p.Method, p.Recipient, p.Amount, p.Status)
				}
				return nil
			})
		},
	}
}

func summaryCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize income and expenses of --owner (default: the last month)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			var p core.Period
			if p.From, err = core.ParseTimeBound("from", from, false); err != nil {
				return err
			}
			if p.To, err = core.ParseTimeBound("to", to, true); err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				s, err := ledger.Dashboard.Summarize(ctx, owner, p)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(s)
				}
				printSummary(s)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "window end, RFC 3339 or YYYY-MM-DD (whole day)")
	return cmd
}

func categoriesCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List global categories plus those of --owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k core.Kind
			if kind != "" {
				var err error
				if k, err = core.ParseKind(kind); err != nil {
					return err
				}
			}
			return withLedger(cmd, func(ctx context.Context, ledger *services.Ledger) error {
				cats, err := ledger.Categories.ListCategories(ctx, ownerID, k)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cats)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				defer w.Flush()
				fmt.Fprintln(w, "ID\tKIND\tNAME\tCOLOR\tSCOPE")
				for _, c := range cats {
					scope := "global"
					if c.OwnerID != nil {
						scope = *c.OwnerID
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Kind, c.Name, c.Color, scope)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only INCOME or EXPENSE categories")
	return cmd
}

func printWallet(w core.Wallet) error {
	if asJSON {
		return printJSON(map[string]any{
			"id":         w.ID,
			"owner_id":   w.OwnerID,
			"balance":    w.Balance,
			"updated_at": w.UpdatedAt,
		})
	}
	fmt.Printf("wallet #%d (%s): %s\n", w.ID, w.OwnerID, w.Balance)
	return nil
}

func printSummary(s core.Summary) {
	fmt.Printf("period   %s .. %s\n", s.From.Local().Format(time.DateTime), s.To.Local().Format(time.DateTime))
	fmt.Printf("income   %s\n", s.TotalIncome)
	fmt.Printf("expense  %s\n", s.TotalExpense)
	fmt.Printf("balance  %s\n", s.Balance)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, group := range []struct {
		title string
		rows  []core.CategorySummary
	}{
		{"expenses by category", s.ExpensesByCategory},
		{"income by category", s.IncomeByCategory},
	} {
		if len(group.rows) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\t\n", group.title)
		for _, c := range group.rows {
			fmt.Fprintf(w, "  %s\t%s\n", c.Name, c.Amount)
		}
	}
}
