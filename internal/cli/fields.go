package cli

import (
	"github.com/JNickson/kube-log-annotator/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

func newFieldsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the effective annotation field mapping",
		Long: `Print the destination path of every annotation field after defaults,
config file and environment are applied. Disabled fields print as "".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(cfg.Fields.Map())
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
