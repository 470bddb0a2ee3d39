// Package cli implements the atlaspack command-line interface.
//
// # Commands
//
//   - pack: Pack a directory of images into PNG pages plus TexturePacker JSON
//   - inspect: Summarize an existing atlas JSON file
//   - tree: Dump the partition tree of a packed page as SVG or DOT
//   - view: Open a packed atlas in an interactive window
//
// # Configuration
//
// Page and sheet options are read from atlaspack.toml in the working
// directory when present, or from the file named by --config. Command-line
// flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The same
// logger receives the packer's own debug output.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/atlaspack"
)

const (
	// appName is the application name used for display.
	appName = "atlaspack"

	// defaultConfigFile is read from the working directory when --config is
	// not given.
	defaultConfigFile = "atlaspack.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "atlaspack packs images into texture atlases",
		Long:         `atlaspack packs sprite images into texture atlas pages with a growing binary-tree packer and writes PNG pages plus TexturePacker JSON.`,
		Version:      atlaspack.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+defaultConfigFile+" if present)")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.viewCommand())

	return root
}

// setup loads the config file and routes library logging through the CLI
// logger.
func (c *CLI) setup(cmd *cobra.Command) error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		path = defaultConfigFile
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("Loaded config", "path", cfg.Path)
	}

	atlaspack.SetLogger(slog.New(c.Logger))
	return nil
}
