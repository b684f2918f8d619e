package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "tt — a local, append-only interval time tracker",
	Long:  "Dead-simple CLI time tracker backed by append-only monthly datafiles and a transactional undo journal.",
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tt/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "database root (default $HOME/.tt)")
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		dir := filepath.Join(home, ".tt")
		_ = os.MkdirAll(dir, 0o755)
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}
	viper.SetDefault("timezone", "Europe/Berlin")
	viper.SetDefault("rounding.strategy", "up")
	viper.SetDefault("rounding.quantum_min", 15)
	// Safe read; if missing, proceed with defaults.
	_ = viper.ReadInConfig()
}
