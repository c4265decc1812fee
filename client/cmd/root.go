package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	aliases "source.quilibrium.com/quilibrium/monorepo/alias"
	"source.quilibrium.com/quilibrium/monorepo/config"
	"source.quilibrium.com/quilibrium/monorepo/node/store"
	"source.quilibrium.com/quilibrium/monorepo/types/execution/state"
)

var configDirectory string
var debug bool
var NodeConfig *config.Config
var Logger *zap.Logger

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "packsctl",
	Short: "Packs client",
	Long: `packsctl inspects the records of the packs program held in a local
store. It derives program addresses, prints pack sets with their cards and
draw odds, and manages address aliases.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		NodeConfig, err = config.LoadConfig(configDirectory)
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		Logger, logCloser, err = NodeConfig.CreateLogger(debug)
		if err != nil {
			return errors.Wrap(err, "create logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Logger != nil {
			_ = Logger.Sync()
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openAccounts opens the configured store. The returned closer releases the
// underlying database.
func openAccounts() (*store.PebbleAccountStore, io.Closer, error) {
	db := store.NewPebbleDB(Logger, NodeConfig.DB)
	accounts, err := store.NewPebbleAccountStore(
		db,
		NodeConfig.DB.AccountCacheSize,
		Logger,
	)
	if err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "open accounts")
	}

	return accounts, db, nil
}

func openAliases() (*aliases.Store, error) {
	file := NodeConfig.Alias.AliasFile
	if file.CreateIfMissing {
		return aliases.NewOnDisk(file.Path)
	}

	st, err := aliases.Load(file.Path)
	if err != nil && os.IsNotExist(errors.Cause(err)) {
		return aliases.NewInMemory(), nil
	}
	return st, err
}

// resolveAll maps each argument through the alias store.
func resolveAll(args ...string) ([]state.Pubkey, error) {
	st, err := openAliases()
	if err != nil {
		return nil, errors.Wrap(err, "resolve")
	}

	keys := make([]state.Pubkey, len(args))
	for i, arg := range args {
		keys[i], err = st.Resolve(arg)
		if err != nil {
			return nil, err
		}
	}

	return keys, nil
}

func packsProgramID() (state.Pubkey, error) {
	ids, err := NodeConfig.Packs.ProgramIDs()
	if err != nil {
		return state.ZeroPubkey, err
	}
	return ids.Packs, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configDirectory,
		"config",
		".config",
		"config directory holding config.yml, the store and aliases",
	)
	rootCmd.PersistentFlags().BoolVar(
		&debug,
		"debug",
		false,
		"log at debug level",
	)

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(oddsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(aliasCmd)
}
