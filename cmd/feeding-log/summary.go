package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// parseDay accepts YYYY/MM/DD or YYYY-MM-DD in local time; empty means
// today.
func parseDay(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
	}
	for _, layout := range []string{models.DateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY/MM/DD", value)
}

func newSummaryCmd(a *app) *cobra.Command {
	var pet string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show feeding summaries",
	}
	cmd.PersistentFlags().StringVar(&pet, "for", "", "Pet name (defaults to the configured pet)")

	var dayDate string
	day := &cobra.Command{
		Use:   "day",
		Short: "Totals, supplements, medicines and meals of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(dayDate)
			if err != nil {
				return err
			}
			store, engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := engine.DaySummary(cmd.Context(), pet, date)
			if err != nil {
				return err
			}
			printDay(cmd, report)
			return nil
		},
	}
	day.Flags().StringVar(&dayDate, "date", "", "Day (YYYY/MM/DD), defaults to today")

	var mealDate, mealName string
	meal := &cobra.Command{
		Use:   "meal",
		Short: "Entries and intake of one meal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(mealDate)
			if err != nil {
				return err
			}
			if strings.TrimSpace(mealName) == "" {
				return fmt.Errorf("--meal is required")
			}
			store, engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := engine.MealSummary(cmd.Context(), models.MealScope{
				Date: date.Format(models.DateLayout),
				Meal: strings.TrimSpace(mealName),
				Pet:  pet,
			})
			if err != nil {
				return err
			}
			printMeal(cmd, report)
			return nil
		},
	}
	meal.Flags().StringVar(&mealDate, "date", "", "Day (YYYY/MM/DD), defaults to today")
	meal.Flags().StringVar(&mealName, "meal", "", "Meal name")

	var fromDate, toDate string
	trend := &cobra.Command{
		Use:   "trend",
		Short: "Per-day totals over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := parseDay(toDate)
			if err != nil {
				return err
			}
			from := to.AddDate(0, 0, -6)
			if fromDate != "" {
				if from, err = parseDay(fromDate); err != nil {
					return err
				}
			}
			if from.After(to) {
				return fmt.Errorf("--from is after --to")
			}
			store, engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			days, err := engine.Trend(cmd.Context(), pet, from, to)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tKCAL\tFOOD\tWATER\tPROTEIN\tFAT\tPHOS")
			for _, d := range days {
				fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.2f\t%.2f\t%.3f\n",
					d.Date, d.Calorie, d.Food, d.Water, d.Protein, d.Fat, d.Phosphorus)
			}
			return w.Flush()
		},
	}
	trend.Flags().StringVar(&fromDate, "from", "", "First day, defaults to six days before --to")
	trend.Flags().StringVar(&toDate, "to", "", "Last day, defaults to today")

	cmd.AddCommand(day, meal, trend)
	return cmd
}

func printTotals(w *tabwriter.Writer, t ledger.Totals) {
	fmt.Fprintf(w, "Calories\t%.1f kcal\n", t.Calorie)
	fmt.Fprintf(w, "Food\t%.1f g\n", t.Food)
	fmt.Fprintf(w, "Water\t%.1f ml\n", t.Water)
	fmt.Fprintf(w, "Protein\t%.2f g\n", t.Protein)
	fmt.Fprintf(w, "Fat\t%.2f g\n", t.Fat)
	fmt.Fprintf(w, "Phosphorus\t%.3f g\n", t.Phosphorus)
}

func printDay(cmd *cobra.Command, r ledger.DayReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", r.Date, r.Pet)
	printTotals(w, r.Totals)
	for _, t := range r.Supplements {
		fmt.Fprintf(w, "Supplement\t%s x%g\n", t.Name, t.Count)
	}
	for _, t := range r.Medicines {
		fmt.Fprintf(w, "Medicine\t%s x%g\n", t.Name, t.Count)
	}
	for _, m := range r.Meals {
		status := "open"
		if m.Finished {
			status = "finished " + m.FinishTime
		}
		fmt.Fprintf(w, "Meal\t%s\t%s\n", m.Meal, status)
	}
	w.Flush()
}

func printMeal(cmd *cobra.Command, r ledger.MealReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", r.Scope.Date, r.Scope.Meal, r.Scope.Pet)
	for _, e := range r.Entries {
		fmt.Fprintf(w, "%s\t%s\t%g\t%.1f kcal\n", e.Time, e.ItemName, e.NetQuantity, e.Nutrients.Calorie)
	}
	printTotals(w, r.Totals)
	if r.Finished {
		fmt.Fprintf(w, "Finished\t%s\n", r.FinishTime)
	}
	w.Flush()
}
