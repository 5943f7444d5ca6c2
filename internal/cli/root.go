package cli

import (
	"fmt"
	"time"

	"github.com/JNickson/kube-log-annotator/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	cmd := &cobra.Command{
		Use:   "kube-log-annotator",
		Short: "Annotate container log records with Kubernetes pod metadata",
		Long: `kube-log-annotator tails container log files on a node and enriches
every record with metadata of the pod that produced it, looked up from a
local cache of the pods scheduled on the node.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd, cfgFile)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.String(config.KeyLogDir, "/var/log/pods", "root directory of container log files")
	flags.String(config.KeyNodeName, "", "only cache pods scheduled on this node")
	flags.String(config.KeyPort, "8001", "HTTP listen port")
	flags.String(config.KeyLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(config.KeyReadFrom, config.ReadFromEnd, "where to start reading existing files (end, beginning)")
	flags.Duration(config.KeyPollInterval, time.Second, "interval between file rescans")
	flags.String(config.KeyOutput, config.OutputStdout, "record output (stdout, none)")
	flags.String(config.KeyKubeconfig, "", "path to a kubeconfig file")

	runCmd := newRunCommand(v)
	cmd.Args = cobra.NoArgs
	cmd.RunE = runCmd.RunE

	cmd.AddCommand(runCmd)
	cmd.AddCommand(newFieldsCommand(v))

	return cmd
}

func initConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if err := config.BindEnv(v); err != nil {
		return err
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if cfgFile == "" {
		return nil
	}

	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", v.ConfigFileUsed())
	return nil
}
