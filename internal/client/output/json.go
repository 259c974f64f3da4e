package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONResponse is the envelope every --json command prints; Data carries
// the raw server response so scripted callers see the API shape unchanged.
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

// OutputJSON prints the envelope to stdout, indented
func OutputJSON(data interface{}, err error) {
	if encodeErr := writeJSON(os.Stdout, data, err); encodeErr != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", encodeErr)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, data interface{}, err error) error {
	response := JSONResponse{
		Success: err == nil,
		Data:    data,
	}
	if err != nil {
		response.Error = err.Error()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
