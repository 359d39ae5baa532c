package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/appsworld/go-classinfo/internal/config"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app carries the state shared by every subcommand once the root command's
// pre-run hook has loaded the configuration.
type app struct {
	configPath string
	v          *viper.Viper
	cfg        *config.Config
	log        *zap.Logger
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "objcinfo",
		Short: "Inspect Objective-C class metadata",
		Long: `objcinfo reads the Objective-C classes of a Mach-O image and prints the
cached class descriptors: instance variables, methods and properties with
their classified type encodings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./objcinfo.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error, off)")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "V", false, "show resolved types, accessors and addresses")

	rootCmd.AddCommand(NewDumpCommand(a))
	rootCmd.AddCommand(NewEncodingCommand())
	rootCmd.AddCommand(NewPropertyCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	a.v = config.New(a.configPath)

	flags := cmd.Flags()
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		a.v.Set("log.level", f.Value.String())
	}
	if f := flags.Lookup("verbose"); f != nil && f.Changed {
		a.v.Set("output.verbose", f.Value.String() == "true")
	}
	if f := flags.Lookup("no-color"); f != nil && f.Changed && f.Value.String() == "true" {
		a.v.Set("output.color", false)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if !cfg.Output.Color {
		color.NoColor = true
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.log = logger
	return nil
}
