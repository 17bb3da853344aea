package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newIngestCmd(app *App) *cobra.Command {
	var (
		topicFieldID uint
		file         string
		truncated    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store raw generator output as a topic field's roadmap",
		Long: "Runs the same sanitize, normalize and ingest steps as an API generation, " +
			"reading the generator text from --file (or stdin when --file is -).",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			view, created, err := app.Roadmaps.IngestRaw(cmd.Context(), topicFieldID, string(raw), truncated)
			if err != nil {
				return err
			}
			verb := "reused existing"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s roadmap %d %q with %d items\n",
				verb, view.Roadmap.ID, view.Roadmap.Name, len(view.Items))
			return nil
		},
	}

	cmd.Flags().UintVar(&topicFieldID, "topic-field", 0, "Topic field id")
	cmd.Flags().StringVar(&file, "file", "", "File with generator output, - for stdin")
	cmd.Flags().BoolVar(&truncated, "truncated", false, "Output was cut at the token limit")
	_ = cmd.MarkFlagRequired("topic-field")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return raw, nil
}
