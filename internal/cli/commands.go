package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/adriangreen/tm-list/internal/export"
	"github.com/adriangreen/tm-list/internal/tasks"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newAddCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description>",
		Short: "Add an item to the end of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			list := s.list(cmd.Context())
			added, err := list.Add(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to add")
				return nil
			}

			t := list.Tasks()[list.Len()-1]
			fmt.Fprintf(cmd.OutOrStdout(), "added %d: %s\n", t.Position, t.Description)
			return nil
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			seq := s.list(cmd.Context()).Tasks()
			out := cmd.OutOrStdout()

			if pretty {
				return renderPretty(out, seq)
			}
			for _, t := range seq {
				fmt.Fprintln(out, formatTask(t))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "render the list as styled markdown")
	return cmd
}

func newDoneCommand(opts *options) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <position>",
		Short: "Mark the item at position as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			list := s.list(cmd.Context())
			if err := list.ToggleCompleted(cmd.Context(), pos, !undo); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTask(list.Tasks()[pos]))
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the item as open again")
	return cmd
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every completed item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.list(cmd.Context()).ClearCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d completed\n", n)
			return nil
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		format string
		output string
		title  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the list as markdown, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := export.Render(s.list(cmd.Context()).Tasks(), format, title)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatMarkdown, "output format: md, json or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "tm-list", "heading for md and pdf output")
	return cmd
}

func parsePosition(arg string) (tasks.Position, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("position must be a whole number, got %q", arg)
	}
	return tasks.Position(n), nil
}

func formatTask(t tasks.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("%3d [%s] %s", t.Position, mark, t.Description)
}

// renderPretty prints the list through glamour. Plain output (no colors)
// is used when NO_COLOR is set or out is not a terminal.
func renderPretty(out io.Writer, seq tasks.Sequence) error {
	style := "dark"
	if termenv.NewOutput(out).EnvColorProfile() == termenv.Ascii {
		style = "notty"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	rendered, err := r.Render(export.Markdown(seq, "tm-list"))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
