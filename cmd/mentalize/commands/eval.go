package commands

import (
	"fmt"

	"github.com/Harshitk-cp/mentalize/internal/domain"
	"github.com/Harshitk-cp/mentalize/internal/service"
	"github.com/spf13/cobra"
)

func newEvalCmd(opts *options) *cobra.Command {
	var (
		profile string
		observe string
		stress  string
		lambda  float64
	)

	cmd := &cobra.Command{
		Use:   "eval <scenario>",
		Short: "Evaluate one profile's belief after an observation",
		Long: `Evaluate one profile's belief about the subject's latent state.

Without --observe the result is the prior. --stress (low, moderate, high) and
--lambda (evidence weight in [0,1]) are mutually exclusive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}

			req := service.EvaluateRequest{
				Scenario:    args[0],
				Profile:     profile,
				Observation: observe,
				Stress:      stress,
			}
			if cmd.Flags().Changed("lambda") {
				req.EvidenceWeight = &lambda
			}

			run, err := svc.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printRun(cmd, run)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Observer profile (required)")
	cmd.Flags().StringVarP(&observe, "observe", "o", "", "Observed value of the observable variable")
	cmd.Flags().StringVarP(&stress, "stress", "s", "", "Stress level: low, moderate or high")
	cmd.Flags().Float64VarP(&lambda, "lambda", "l", 1, "Evidence weight in [0,1]")
	_ = cmd.MarkFlagRequired("profile")
	cmd.MarkFlagsMutuallyExclusive("stress", "lambda")
	return cmd
}

func printRun(cmd *cobra.Command, run *domain.Run) error {
	out := cmd.OutOrStdout()
	observation := run.Observation
	if observation == "" {
		observation = "(none)"
	}
	fmt.Fprintf(out, "%s/%s: %s about %s, mode %s\n", run.Scenario, run.Profile, run.Observer, run.Subject, run.Mode)
	fmt.Fprintf(out, "observation: %s  evidence weight: %s\n\n", observation, prob(run.EvidenceWeight))

	tw := newTable(out)
	fmt.Fprintf(tw, "%s\tP\n", run.Variable)
	for i, v := range run.Values {
		marker := ""
		if v == run.Top {
			marker = "\t*"
		}
		fmt.Fprintf(tw, "%s\t%s%s\n", v, prob(run.Belief[i]), marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\ncertainty: %s (%s)\n", run.Certainty, domain.CertaintyReason(run.TopProbability))
	return nil
}

func newCompareCmd(opts *options) *cobra.Command {
	var observe, stress string

	cmd := &cobra.Command{
		Use:   "compare <scenario>",
		Short: "Evaluate every profile of a scenario on the same observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			runs, err := svc.Compare(cmd.Context(), args[0], observe, stress)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, header("PROFILE\tMODE\tTOP\tCERTAINTY", runs[0].Values))
			for _, r := range runs {
				fmt.Fprintln(tw, row(fmt.Sprintf("%s\t%s\t%s\t%s", r.Profile, r.Mode, r.Top, r.Certainty), r.Belief))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&observe, "observe", "o", "", "Observed value of the observable variable")
	cmd.Flags().StringVarP(&stress, "stress", "s", "", "Stress level: low, moderate or high")
	return cmd
}

func newMatrixCmd(opts *options) *cobra.Command {
	var profile, kind string

	cmd := &cobra.Command{
		Use:   "matrix <scenario>",
		Short: "Tabulate belief for every possible observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			m, err := svc.Matrix(cmd.Context(), args[0], profile, service.MatrixKind(kind))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s/%s %s matrix: rows %s, columns %s\n", m.Scenario, m.Profile, m.Kind, m.Latent, m.Observable)
			tw := newTable(out)
			fmt.Fprintln(tw, header(m.Latent, m.Cols))
			for i, v := range m.Rows {
				fmt.Fprintln(tw, row(v, m.Values[i]))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Observer profile (required)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "posterior, choice or joint (default follows the profile mode)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func newStressCmd(opts *options) *cobra.Command {
	var profile, observe string

	cmd := &cobra.Command{
		Use:   "stress <scenario>",
		Short: "Show how stress shrinks the weight given to evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			points, err := svc.StressSweep(cmd.Context(), args[0], profile, observe)
			if err != nil {
				return err
			}
			s, err := svc.Get(args[0])
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, header("STRESS\tLAMBDA\tTOP", s.Latent.Values))
			for _, p := range points {
				probs := make([]float64, len(s.Latent.Values))
				for i, v := range s.Latent.Values {
					probs[i] = p.Belief[v]
				}
				fmt.Fprintln(tw, row(fmt.Sprintf("%s\t%s\t%s", p.Level, prob(p.EvidenceWeight), p.Top), probs))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Observer profile (required)")
	cmd.Flags().StringVarP(&observe, "observe", "o", "", "Observed value of the observable variable")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
