package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/spf13/cobra"
)

// Output formats for --output.
const (
	outputText = "text"
	outputJSON = "json"
)

func (a *app) jsonOutput() bool {
	return a.v.GetString("output") == outputJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errorDocument is the --output json form of a failed command.
type errorDocument struct {
	Error *entities.ErrorDetail `json:"error"`
}

// execute runs root and reports a failure on the failing command's error
// stream, as an error document with --output json.
func execute(root *cobra.Command) error {
	cmd, err := root.ExecuteC()
	if err == nil {
		return nil
	}
	if cmd == nil {
		cmd = root
	}

	w := cmd.ErrOrStderr()
	if format, _ := cmd.Flags().GetString("output"); format == outputJSON {
		if encErr := writeJSON(w, errorDocument{Error: errors.ToErrorDetail(err)}); encErr != nil {
			fmt.Fprintln(w, "Error:", err)
		}
		return err
	}
	fmt.Fprintln(w, "Error:", err)
	return err
}
