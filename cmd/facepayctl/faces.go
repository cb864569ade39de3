package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/your-org/facepay/internal/storage"
)

var (
	facesLabel  string
	eventsLimit int
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Show stored face samples per label and their uploaded images",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := needDB(ctx)
		if err != nil {
			return err
		}
		counts, err := store.CountFaceSamples(ctx)
		if err != nil {
			return err
		}

		if facesLabel == "" {
			labels := make([]string, 0, len(counts))
			for l := range counts {
				labels = append(labels, l)
			}
			sort.Strings(labels)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "LABEL\tSAMPLES")
			fmt.Fprintln(w, "-----\t-------")
			for _, l := range labels {
				fmt.Fprintf(w, "%s\t%d\n", l, counts[l])
			}
			return w.Flush()
		}

		objects, err := needMinIO()
		if err != nil {
			return err
		}
		keys, err := objects.ListObjects(ctx, storage.FaceImagePrefix(facesLabel))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d stored samples, %d images\n", facesLabel, counts[facesLabel], len(keys))
		for _, k := range keys {
			fmt.Println(objects.ObjectURL(k))
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent detection events",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := needDB(cmd.Context())
		if err != nil {
			return err
		}
		events, err := store.ListEvents(cmd.Context(), eventsLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tLABEL\tSESSION")
		fmt.Fprintln(w, "----\t----\t-----\t-------")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Type, e.Label, e.SessionID)
		}
		return w.Flush()
	},
}

func init() {
	facesCmd.Flags().StringVar(&facesLabel, "label", "", "list uploaded images for one label")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "maximum number of events")
	rootCmd.AddCommand(facesCmd, eventsCmd)
}
