package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
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
	case GameDetails:
		o.printGameDetails(v)
	case Configuration:
		o.printConfiguration(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// GameDetails response type (matches API)
type GameDetails struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	State      string       `json:"state"`
	CreatedOn  string       `json:"createdOn"`
	StartedOn  *string      `json:"startedOn,omitempty"`
	FinishedOn *string      `json:"finishedOn,omitempty"`
	Players    []GamePlayer `json:"players"`
}

// GamePlayer response type
type GamePlayer struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Configuration response type
type Configuration struct {
	VouchersEnabled    bool `json:"vouchersEnabled"`
	MaxPlayersEnforced bool `json:"maxPlayersEnforced"`
	MaxPlayers         int  `json:"maxPlayers"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGameDetails(g GameDetails) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("  Code:    %s\n", g.Code)
	fmt.Printf("  State:   %s\n", g.State)
	fmt.Printf("  Created: %s\n", g.CreatedOn)
	if g.StartedOn != nil {
		fmt.Printf("  Started: %s\n", *g.StartedOn)
	}
	if g.FinishedOn != nil {
		fmt.Printf("  Finished: %s\n", *g.FinishedOn)
	}
	fmt.Printf("  Players: %d\n", len(g.Players))
	for _, p := range g.Players {
		name := p.DisplayName
		if name == "" {
			name = p.ID
		}
		fmt.Printf("    - %s\n", name)
	}
}

func (o *Output) printConfiguration(c Configuration) {
	fmt.Printf("Vouchers enabled:    %t\n", c.VouchersEnabled)
	fmt.Printf("Max players enforced: %t\n", c.MaxPlayersEnforced)
	fmt.Printf("Max players:         %d\n", c.MaxPlayers)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", strings.ToUpper(h.Status))
}
