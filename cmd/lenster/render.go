package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go-lenster/og"
)

func newRenderCmd(cfgPath *string) *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "render <handle>",
		Short: "Render a profile meta image to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			defer a.store.Close()

			f := og.ParseFormat(format)
			img, err := a.generator.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data := img.Bytes(f)
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes, %s)\n", out, len(data), f.ContentType())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringVar(&format, "format", "png", "png or svg")
	return cmd
}
