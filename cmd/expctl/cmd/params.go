package cmd

import (
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/armadaproject/expctl/internal/common"
	"github.com/armadaproject/expctl/internal/expctl"
)

const (
	experimentPathKey = "experimentPath"
	experimentNameKey = "experimentName"
	verboseKey        = "verbose"
)

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "config file (default is $HOME/.expctl.yaml)")
	cmd.PersistentFlags().String("experiment-path", "", "directory holding the experiments")
	cmd.PersistentFlags().String("experiment-name", "", "name of the experiment")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
	_ = viper.BindPFlag(experimentPathKey, cmd.PersistentFlags().Lookup("experiment-path"))
	_ = viper.BindPFlag(experimentNameKey, cmd.PersistentFlags().Lookup("experiment-name"))
	_ = viper.BindPFlag(verboseKey, cmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindEnv(experimentPathKey, expctl.ExperimentPathEnvVar)
	_ = viper.BindEnv(experimentNameKey, expctl.ExperimentNameEnvVar)
}

// initParams loads the config file and populates the app params from flags, environment
// and config, in that order of precedence.
func initParams(cmd *cobra.Command, params *expctl.Params) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return errors.Wrap(err, "error reading config flag")
	}
	if err := loadConfigFile(cfgFile); err != nil {
		return err
	}
	if err := viper.Unmarshal(params); err != nil {
		return errors.Wrap(err, "error unmarshalling parameters")
	}
	if params.Verbose {
		common.ConfigureVerboseLogging()
	}
	return nil
}

func loadConfigFile(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "error finding home directory")
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".expctl")
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		log.Debugf("Using config file %s", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
		log.Debug("No config file found")
	default:
		return errors.Wrapf(err, "can't read config %s", viper.ConfigFileUsed())
	}
	return nil
}
