package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &runOptions{}
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Prints the configuration run would use, with defaults applied, as YAML.
With --check the configuration is validated first.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if check {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid config: %w", err)
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().BoolVar(&check, "check", false, "validate the configuration")

	return cmd
}
