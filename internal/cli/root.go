// Package cli implements the supportbot command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/config"
)

const defaultConfigFile = "supportbot.yaml"

// options is shared by every subcommand.
type options struct {
	v          *viper.Viper
	configFile string
}

// NewRootCmd creates the root supportbot command
func NewRootCmd() *cobra.Command {
	o := &options{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "supportbot",
		Short: "Conversational support bot backend",
		Long: `SupportBot keeps a per-session conversation history, sends it to a language
model with a support-oriented system prompt and returns the reply over HTTP.

Configuration is layered: built-in defaults, a YAML config file, SUPPORTBOT_*
environment variables, then command line flags. AI_MODEL and AI_GATEWAY are
read as fallbacks for SUPPORTBOT_LLM_MODEL and SUPPORTBOT_LLM_GATEWAY.

Examples:
  supportbot serve --provider static --store-driver memory
  supportbot config init
  supportbot history list
  supportbot chat --server http://localhost:8787`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "Path to config file (default: ./supportbot.yaml when present)")
	bindFlag(o.v, pf, "logging.level", "log-level", "Log level: debug, info, warn, error")
	bindFlag(o.v, pf, "logging.format", "log-format", "Log format: json or console")
	bindFlag(o.v, pf, "store.driver", "store-driver", "Session store: memory, sqlite, postgres, redis")
	bindFlag(o.v, pf, "store.dsn", "store-dsn", "Store location: sqlite path, postgres DSN or redis URL")

	cmd.AddCommand(newServeCmd(o))
	cmd.AddCommand(newHistoryCmd(o))
	cmd.AddCommand(newConfigCmd(o))
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newAskCmd())

	return cmd
}

// bindFlag defines a string flag and binds it to a config key. The flag has no
// default of its own so that unset flags fall through to lower layers.
func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name, usage string) {
	fs.String(name, "", usage)
	_ = v.BindPFlag(key, fs.Lookup(name))
}

func (o *options) useConfigFile() {
	switch {
	case o.configFile != "":
		o.v.SetConfigFile(o.configFile)
	default:
		if _, err := os.Stat(defaultConfigFile); err == nil {
			o.v.SetConfigFile(defaultConfigFile)
		}
	}
}

// load returns the fully validated configuration.
func (o *options) load() (*config.Config, error) {
	o.useConfigFile()
	return config.Load(o.v)
}

// loadForStore returns configuration that is only required to name a usable store.
func (o *options) loadForStore() (*config.Config, error) {
	o.useConfigFile()
	cfg, err := config.Decode(o.v)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}
