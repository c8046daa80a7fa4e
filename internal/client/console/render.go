package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/atinyakov/PlantCare/internal/client/api"
)

// PrintError renders a failure with its extracted message only.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Details != "" {
		msg = fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Details)
	}
	fmt.Fprintf(w, "❌ Error: %s\n", msg)
}

// PrintSuccess renders a confirmation.
func PrintSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✅ "+format+"\n", args...)
}

// PrintJSON renders v indented.
func PrintJSON(w io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		PrintError(w, err)
		return
	}
	fmt.Fprintln(w, string(b))
}
