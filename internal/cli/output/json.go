package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter emits indented JSON, one document per Format call.
type JSONFormatter struct{}

// Format writes data to w as JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
