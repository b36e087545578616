// Command klondike deals and plays Klondike layouts locally, without a server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"klondike-go/internal/solitaire"
)

type CLI struct {
	Deal  DealCmd  `cmd:"" help:"Print a freshly dealt layout as JSON."`
	Apply ApplyCmd `cmd:"" help:"Apply one move to a layout and print the result."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("klondike"),
		kong.Description("Klondike solitaire rules engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

type DealCmd struct {
	Seed   int64 `help:"RNG seed; 0 picks a random one." default:"0"`
	Pretty bool  `help:"Indent the output."`
}

func (c *DealCmd) Run(out io.Writer) error {
	st := solitaire.InitialState(solitaire.NewRand(c.Seed))
	return writeJSON(out, st, c.Pretty)
}

type ApplyCmd struct {
	State     string `required:"" type:"existingfile" help:"Path to a layout JSON file."`
	Move      string `required:"" help:"Move as JSON: {\"cards\":[...],\"src\":\"pile1\",\"dst\":\"stack1\"}."`
	DrawCount int    `default:"1" help:"Cards per draw from the stock (1 or 3)."`
	Pretty    bool   `help:"Indent the output."`
}

func (c *ApplyCmd) Run(out io.Writer) error {
	raw, err := os.ReadFile(c.State)
	if err != nil {
		return err
	}
	var st solitaire.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if st.Total() != solitaire.DeckSize {
		return fmt.Errorf("state holds %d cards, want %d", st.Total(), solitaire.DeckSize)
	}
	var m solitaire.Move
	if err := json.Unmarshal([]byte(c.Move), &m); err != nil {
		return fmt.Errorf("%w: %v", solitaire.ErrMalformedMove, err)
	}

	if err := solitaire.CheckSource(m, st, c.DrawCount); err != nil {
		return err
	}
	next, err := solitaire.ValidateMove(m, st)
	if err != nil {
		return err
	}
	return writeJSON(out, next, c.Pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
