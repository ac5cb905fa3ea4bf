package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
)

// AskCmd returns the ask client command.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <notebook-id> <question>",
		Short: "Ask a question against a notebook",
		Long:  "Send a question to a running inkwell server and print the grounded answer with its citations",
		Args:  cobra.ExactArgs(2),
		RunE:  runAsk,
	}

	addClientFlags(cmd)
	cmd.Flags().StringSliceP("document", "d", nil, "Restrict retrieval to these document IDs (repeatable)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	notebookID, question := args[0], args[1]

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	documentIDs, _ := cmd.Flags().GetStringSlice("document")

	resp, err := client.postJSON("/notebooks/"+notebookID+"/chat", handlers.AskRequest{
		Question:    question,
		DocumentIDs: documentIDs,
	})
	if err != nil {
		return err
	}

	var turn handlers.ChatTurnResponse
	if err := json.Unmarshal(resp.Data, &turn); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		pretty, err := json.MarshalIndent(turn, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	}

	fmt.Println(turn.AIResponse)
	if len(turn.Metadata.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, c := range turn.Metadata.Citations {
			fmt.Printf("  - %s\n", c.Reference)
		}
	}
	fmt.Printf("\n(%d chunks retrieved, chat id %s)\n", turn.Metadata.RetrievedChunks, turn.ID)

	return nil
}
