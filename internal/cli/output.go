package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Form:
		o.printForm(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// FormError response type
type FormError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Form response type (matches API)
type Form struct {
	ID          string            `json:"id"`
	State       string            `json:"state"`
	Username    string            `json:"username,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Error       *FormError        `json:"error,omitempty"`
	Attempts    int               `json:"attempts"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printForm(f Form) {
	_, _ = fmt.Fprintf(o.w, "Form: %s\n", f.ID)
	_, _ = fmt.Fprintf(o.w, "State: %s\n", f.State)
	if f.Username != "" {
		_, _ = fmt.Fprintf(o.w, "Username: %s\n", f.Username)
	}
	_, _ = fmt.Fprintf(o.w, "Attempts: %d\n", f.Attempts)

	if f.Error != nil {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", f.Error.Message)
	}

	if len(f.FieldErrors) > 0 {
		fields := make([]string, 0, len(f.FieldErrors))
		for field := range f.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		_, _ = fmt.Fprintln(o.w, "Field errors:")
		for _, field := range fields {
			_, _ = fmt.Fprintf(o.w, "  - %s: %s\n", field, f.FieldErrors[field])
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
