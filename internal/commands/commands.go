// Package commands implements the webdesk command line.
package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webdesk/internal/config"
	"webdesk/internal/logging"
	"webdesk/pkg/content"
)

// options is shared by every subcommand. It is filled in before any
// subcommand runs.
type options struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	log     zerolog.Logger
}

// New returns the root command.
func New() *cobra.Command {
	o := &options{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "webdesk",
		Short:         "A desktop in the browser: windows, a Finder and icons that stay where you put them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.cfgFile, "config", "c", "", "config file (default: ./webdesk.yaml or ~/.webdesk/webdesk.yaml)")
	flags.String("data-dir", "", "directory holding saved icon positions")
	flags.String("profile", "", "position profile to use")
	flags.String("content-file", "", "YAML content tree (default: built-in sample)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	// unset flags leave file and environment values alone
	_ = o.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = o.v.BindPFlag("profile", flags.Lookup("profile"))
	_ = o.v.BindPFlag("content_file", flags.Lookup("content-file"))
	_ = o.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = o.v.BindPFlag("log.format", flags.Lookup("log-format"))

	addServe(cmd, o)
	addLayout(cmd, o)
	addContent(cmd, o)
	addVersion(cmd)
	return cmd
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	o.cfg, o.log = cfg, log
	return nil
}

// contentTree loads the configured tree, or the built-in one.
func (o *options) contentTree() (*content.Tree, error) {
	if o.cfg.ContentFile == "" {
		return content.Default(), nil
	}
	return content.LoadFile(o.cfg.ContentFile)
}
