package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/your-org/facepay/internal/vision"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Refit the classifier on every stored face sample and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := needDB(ctx)
		if err != nil {
			return err
		}
		models, err := needMinIO()
		if err != nil {
			return err
		}

		trainer := vision.NewTrainer(vision.TrainerConfig{
			Width:      cfg.Classifier.Width,
			Height:     cfg.Classifier.Height,
			Accumulate: true,
		}, store, models)

		knn, err := trainer.Retrain(ctx)
		if err != nil {
			return fmt.Errorf("retrain: %w", err)
		}

		counts := make(map[string]int)
		for _, s := range knn.Samples {
			counts[s.Label]++
		}
		labels := knn.Labels()
		sort.Strings(labels)

		fmt.Printf("Classifier trained on %d samples (k=%d, %dx%d)\n", len(knn.Samples), knn.K, knn.Width, knn.Height)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "LABEL\tSAMPLES")
		fmt.Fprintln(w, "-----\t-------")
		for _, l := range labels {
			fmt.Fprintf(w, "%s\t%d\n", l, counts[l])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}
