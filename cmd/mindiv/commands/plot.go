package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/pkg/plot"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	var output, title, theme string

	cmd := &cobra.Command{
		Use:   "plot <log|->",
		Short: "Render a result log as an HTML chart",
		Long: `Render log10(Un) against n, marking values found by a closed-form rule,
and the multiplicative partition counts when the log carries them.

Examples:
  mindiv plot Un.txt -o Un.html
  mindiv plot Un.txt --theme light -o Un.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}

			w, closeFn, err := createOutput(cmd, output)
			if err != nil {
				return err
			}

			err = plot.Render(w, records, plot.WithTitle(title), plot.WithTheme(plot.Theme(theme)))

			return errors.Join(err, closeFn())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output HTML file (default: stdout)")
	cmd.Flags().StringVar(&title, "title", "Smallest number with n divisors", "chart title")
	cmd.Flags().StringVar(&theme, "theme", string(plot.ThemeDark), "chart theme: dark, light")

	return cmd
}
