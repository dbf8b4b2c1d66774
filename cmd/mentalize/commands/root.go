package commands

import (
	"fmt"
	"os"

	"github.com/Harshitk-cp/mentalize/internal/buildconfig"
	"github.com/Harshitk-cp/mentalize/internal/config"
	"github.com/Harshitk-cp/mentalize/internal/inference"
	"github.com/Harshitk-cp/mentalize/internal/scenario"
	"github.com/Harshitk-cp/mentalize/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	scenarioDir string
	verbose     bool
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "mentalize",
		Short: "Exact nested-belief inference over social scenarios",
		Long: `mentalize evaluates how an observer's prior shapes what they conclude about
another person's hidden intention after seeing one behavior.

Scenarios come from the built-in catalog plus any YAML files found in
--scenario-dir (default $SCENARIO_DIR or ./scenarios).`,
		Version: fmt.Sprintf("%s (commit: %s)", buildconfig.Version(), buildconfig.Commit()),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.scenarioDir, "scenario-dir", "", "Directory of extra scenario YAML files")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log inference steps to stderr")

	root.AddCommand(
		newScenariosCmd(opts),
		newShowCmd(opts),
		newEvalCmd(opts),
		newCompareCmd(opts),
		newMatrixCmd(opts),
		newStressCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	_ = config.Load()
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newService builds a service over the catalog with run history disabled.
func (o *options) newService() (*service.ScenarioService, error) {
	dir := o.scenarioDir
	if dir == "" {
		dir = config.ScenarioDir()
	}
	catalog, err := scenario.Default(dir)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if o.verbose {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{"stderr"}
		if logger, err = zcfg.Build(); err != nil {
			return nil, err
		}
	}

	svc := service.NewScenarioService(catalog, inference.NewEngine(logger), nil, logger)
	svc.SetConcurrency(config.EvalConcurrency())
	return svc, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.VersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "mentalize %s (commit %s, %s)\n", info["version"], info["commit"], info["go_version"])
			return nil
		},
	}
}
