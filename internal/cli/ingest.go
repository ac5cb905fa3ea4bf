package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkwell-labs/inkwell/internal/api/handlers"
	"github.com/inkwell-labs/inkwell/internal/extract"
)

// IngestCmd returns the ingest client command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <notebook-id> <file>",
		Short: "Upload a document into a notebook",
		Long:  "Upload a local PDF, TXT, or MD file to a running inkwell server for chunking and embedding",
		Args:  cobra.ExactArgs(2),
		RunE:  runIngest,
	}

	addClientFlags(cmd)

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	notebookID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	filename := filepath.Base(path)

	// Run the same extraction the server will, so unsupported or corrupt
	// files fail here instead of after the upload.
	if _, _, err := extract.NewExtractor().Extract(filename, data); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.postFile("/notebooks/"+notebookID+"/documents", filename, data)
	if err != nil {
		return err
	}

	var doc handlers.DocumentResponse
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		pretty, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		return nil
	}

	fmt.Printf("Uploaded %s (%s) as document %s\n", doc.Filename, doc.FileType, doc.ID)
	fmt.Println("Ingestion runs in the background; the document becomes searchable once embedded.")

	return nil
}
