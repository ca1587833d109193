package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-eval configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-eval.yaml.",
		Example: `  vibe-eval config                          # show all config
  vibe-eval config set tolerance 20         # widen the default window
  vibe-eval config set length-bins 1-5,6-50 # custom --do-all INDEL bins
  vibe-eval config get mode                 # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(v, cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show all configuration values",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(v, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(v, cmd.OutOrStdout(), args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(v, cmd.OutOrStdout(), args[0])
		},
	})

	return cmd
}

func runConfigShow(v *viper.Viper, w io.Writer) error {
	settings := v.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.vibe-eval.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

// runConfigSet updates one key in the config file. Only keys already in the
// file are written back, not flag defaults.
func runConfigSet(v *viper.Viper, w io.Writer, key, value string) error {
	var val any = value
	switch value {
	case "true", "yes", "on":
		val = true
	case "false", "no", "off":
		val = false
	default:
		if key == "length-bins" {
			val = strings.Split(value, ",")
		}
	}

	cfgFile, err := defaultConfigPath(v)
	if err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(cfgFile)
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	file.Set(key, val)
	if err := file.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	v.Set(key, val)

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(v *viper.Viper, w io.Writer, key string) error {
	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
