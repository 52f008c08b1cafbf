package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/forms"
	"github.com/accunode/accunode-go/internal/store/predictions"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

func init() {
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a single company",
	}
	predictCmd.AddCommand(newAnalyzeCmd(constants.PredictionAnnual), newAnalyzeCmd(constants.PredictionQuarterly))

	listCmd := &cobra.Command{
		Use:   "predictions",
		Short: "List cached predictions under the active data filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := flagPredictionType(cmd)
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			system, _ := cmd.Flags().GetBool("system")
			sortBy, _ := cmd.Flags().GetString("sort")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if filter != "" {
				a.PredStore.SetDataFilter(constants.DataFilter(filter))
			}
			if err := a.PredStore.Fetch(cmd.Context(), typ, predictions.FetchOptions{IncludeSystem: system}); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}

			var items []models.Prediction
			switch sortBy {
			case "probability":
				items = a.PredStore.SortedByProbability(typ)
			case "period":
				items = a.PredStore.SortedByPeriod(typ)
			default:
				items = a.PredStore.Filtered(typ)
			}
			printPredictionTable(items)
			fmt.Printf("\n%d predictions (%s, filter=%s)\n", len(items), typ, a.PredStore.ActiveFilter())
			return nil
		},
	}
	listCmd.Flags().String("type", "annual", "Prediction type: annual or quarterly")
	listCmd.Flags().String("filter", "", "Data filter: personal, organization, system, or all")
	listCmd.Flags().Bool("system", false, "Also fetch the system-wide partition")
	listCmd.Flags().String("sort", "", "Sort order: probability or period")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := flagPredictionType(cmd)
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Predictions.Delete(cmd.Context(), typ, args[0]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			a.PredStore.Remove(typ, args[0])
			fmt.Println("Deleted", args[0])
			return nil
		},
	}
	deleteCmd.Flags().String("type", "annual", "Prediction type: annual or quarterly")
	listCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(predictCmd, listCmd)
}

// newAnalyzeCmd builds the annual or quarterly scoring subcommand. The form
// is validated locally; a validation failure means no request was sent.
func newAnalyzeCmd(typ constants.PredictionType) *cobra.Command {
	form := &forms.PredictionForm{}
	cmd := &cobra.Command{
		Use:   string(typ),
		Short: fmt.Sprintf("Score a company against the %s model", typ),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			analyzer := forms.NewAnalyzer(a.Predictions, a.PredStore)
			pred, err := analyzer.Analyze(cmd.Context(), typ, form)
			if err != nil {
				if app, ok := errors.As(err); ok && app.Kind == errors.KindValidation {
					return fmt.Errorf("invalid input: %s", app.FieldSummary())
				}
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("%s %s: default probability %.2f%% (%s)\n",
				pred.StockSymbol, pred.Period(), pred.DefaultProbability*100, pred.RiskLevel)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.StockSymbol, "symbol", "", "Stock symbol")
	cmd.Flags().StringVar(&form.CompanyName, "name", "", "Company name")
	cmd.Flags().StringVar(&form.Sector, "sector", "", "Sector")
	cmd.Flags().StringVar(&form.MarketCap, "market-cap", "", "Market capitalization (millions)")
	cmd.Flags().StringVar(&form.ReportingYear, "year", "", "Reporting year")
	if typ == constants.PredictionQuarterly {
		cmd.Flags().StringVar(&form.ReportingQuarter, "quarter", "", "Reporting quarter (Q1-Q4)")
	}
	cmd.Flags().StringVar(&form.LongTermDebtToTotalCapital, "lt-debt-capital", "", "Long-term debt / total capital (%)")
	cmd.Flags().StringVar(&form.TotalDebtToEBITDA, "debt-ebitda", "", "Total debt / EBITDA")
	cmd.Flags().StringVar(&form.NetIncomeMargin, "net-income-margin", "", "Net income margin (%)")
	cmd.Flags().StringVar(&form.EBITToInterestExpense, "ebit-interest", "", "EBIT / interest expense")
	cmd.Flags().StringVar(&form.ReturnOnAssets, "roa", "", "Return on assets (%)")
	cmd.Flags().StringVar(&form.SGAMargin, "sga-margin", "", "SG&A margin (%)")
	cmd.Flags().StringVar(&form.OrganizationAccess, "access", "", "Visibility: personal, organization, or system")
	return cmd
}

func flagPredictionType(cmd *cobra.Command) (constants.PredictionType, error) {
	raw, _ := cmd.Flags().GetString("type")
	typ := constants.PredictionType(raw)
	switch typ {
	case constants.PredictionAnnual, constants.PredictionQuarterly:
		return typ, nil
	default:
		return "", errors.NewValidationError("type", "must be annual or quarterly")
	}
}

func printPredictionTable(items []models.Prediction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tCOMPANY\tPERIOD\tPROBABILITY\tRISK\tACCESS")
	for _, p := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f%%\t%s\t%s\n",
			p.StockSymbol, p.CompanyName, p.Period(), p.DefaultProbability*100, p.RiskLevel, p.OrganizationAccess)
	}
	w.Flush()
}
