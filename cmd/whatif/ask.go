package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/submit"
	"github.com/csheth/whatif/internal/validate"
)

var askJSON bool

// errReported marks failures the renderer already printed.
var errReported = errors.New("already reported")

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Example: `  whatif ask "the moon disappeared"
  whatif ask --json cats ran the city council`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the parsed sections as JSON")
}

// printRenderer writes controller transitions to a plain stream.
type printRenderer struct {
	out    io.Writer
	errOut io.Writer
	asJSON bool
	policy response.Policy
}

func (p *printRenderer) Render(state submit.State) {
	switch state.Phase {
	case submit.Submitting:
		fmt.Fprintf(p.errOut, "Asking: %s\n", state.Question)
	case submit.Displaying:
		if p.asJSON {
			enc := json.NewEncoder(p.out)
			enc.SetIndent("", "  ")
			_ = enc.Encode(state.Result)
			return
		}
		fmt.Fprintln(p.out, renderPlain(state.Result, state.Raw, p.policy))
	}
}

func (p *printRenderer) RenderError(err *submit.Error) {
	fmt.Fprintln(p.errOut, err.Kind.Message())
}

func (p *printRenderer) RenderInspiration([]api.Inspiration) {}

func renderPlain(parsed response.Parsed, raw string, policy response.Policy) string {
	var blocks []string
	for _, section := range response.Layout(parsed, raw, policy) {
		var b strings.Builder
		if section.Title != "" {
			b.WriteString(section.Title)
			b.WriteString("\n")
		}
		if section.Body != "" {
			b.WriteString(wordwrap.String(section.Body, 78))
			b.WriteString("\n")
		}
		for _, item := range section.Items {
			b.WriteString("  - ")
			b.WriteString(wordwrap.String(item, 74))
			b.WriteString("\n")
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if err := validate.Question(question); err != nil {
		return errors.New(validate.Message(err))
	}

	renderer := &printRenderer{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		asJSON: askJSON,
		policy: cfg.LayoutPolicy(),
	}
	client := api.NewClient(cfg.Endpoint, &http.Client{Timeout: 2 * time.Minute})
	ctrl := submit.New(client, renderer, submit.WithLogger(logger.Named("submit")))

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
	defer cancel()
	if err := ctrl.Submit(ctx, question); err != nil {
		var failure *submit.Error
		if errors.As(err, &failure) {
			return errReported
		}
		return err
	}
	return nil
}
