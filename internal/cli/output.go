package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case CheckResult:
		o.printCheckResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// SessionPlayer response type (matches API)
type SessionPlayer struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Connected   bool   `json:"connected"`
}

// Session response type
type Session struct {
	ID           string          `json:"id"`
	NbRounds     int             `json:"nb_rounds"`
	Difficulty   string          `json:"difficulty"`
	CurrentRound int             `json:"current_round"`
	RoundActive  bool            `json:"round_active"`
	Over         bool            `json:"over"`
	Players      []SessionPlayer `json:"players"`
}

// SessionList response type
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// CheckResult response type
type CheckResult struct {
	Valid       bool   `json:"valid"`
	DisplayName string `json:"display_name,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Difficulty: %s\n", s.Difficulty)
	fmt.Printf("Round: %d/%d", s.CurrentRound, s.NbRounds)
	if s.RoundActive {
		fmt.Print(" (active)")
	}
	fmt.Println()
	if s.Over {
		fmt.Println("State: over")
	}
	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		connStr := "offline"
		if p.Connected {
			connStr = "online"
		}
		fmt.Printf("  - %s (%s) - %d point(s), %s\n", p.DisplayName, p.ID, p.Score, connStr)
	}
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Println("No live sessions")
		return
	}
	fmt.Printf("Sessions (%d):\n", len(l.Sessions))
	for _, id := range l.Sessions {
		fmt.Printf("  - %s\n", id)
	}
}

func (o *Output) printCheckResult(c CheckResult) {
	if !c.Valid {
		fmt.Println("Token: invalid")
		return
	}
	fmt.Printf("Token: valid (%s)\n", c.DisplayName)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
