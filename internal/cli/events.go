package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		count      int
	)

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream live state changes of a login form",
		Long: `Connect to the form's SSE endpoint and print each state change as it
happens. Each form-state event carries the re-rendered form; the text
output summarises it as the form state plus any error shown.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd, args[0], jsonOutput, count)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Disconnect after this many form-state events (0: never)")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// FormSnapshot is what the text output shows for a rendered form
type FormSnapshot struct {
	State       string
	ServerError string
	FieldErrors []string
}

// ParseFormFragment extracts the form state from a rendered form fragment
func ParseFormFragment(fragment string) (FormSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return FormSnapshot{}, fmt.Errorf("parse fragment: %w", err)
	}

	var snap FormSnapshot
	snap.State, _ = doc.Find("[data-state]").First().Attr("data-state")
	snap.ServerError = strings.TrimSpace(doc.Find("#server-error").Text())
	doc.Find(".field-error").Each(func(_ int, s *goquery.Selection) {
		if msg := strings.TrimSpace(s.Text()); msg != "" {
			snap.FieldErrors = append(snap.FieldErrors, msg)
		}
	})
	return snap, nil
}

func streamEvents(cmd *cobra.Command, formID string, jsonOutput bool, count int) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	// SSE is served by the web router, not the API router
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/login/" + formID + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("form %s not found", formID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		_, _ = fmt.Fprintf(w, "Connected to form %s\n", formID)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string
	seen := 0

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(w, currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
				if currentEvent == "form-state" {
					seen++
				}
			}
			currentEvent = ""
			dataLines = nil

			if count > 0 && seen >= count {
				return nil
			}
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				_, _ = fmt.Fprintln(w, "\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		_, _ = fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		_, _ = fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	if event != "form-state" {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", timestamp, event)
		return
	}

	snap, err := ParseFormFragment(data)
	if err != nil || snap.State == "" {
		_, _ = fmt.Fprintf(w, "[%s] %s: (unreadable form)\n", timestamp, event)
		return
	}

	line := fmt.Sprintf("[%s] %s: %s", timestamp, event, snap.State)
	if snap.ServerError != "" {
		line += " - " + snap.ServerError
	}
	if len(snap.FieldErrors) > 0 {
		line += " - " + strings.Join(snap.FieldErrors, " ")
	}
	_, _ = fmt.Fprintln(w, line)
}
