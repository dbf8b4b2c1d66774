package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newScenariosCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "scenarios",
		Aliases: []string{"ls"},
		Short:   "List available scenarios",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tSUBJECT\tLATENT\tOBSERVABLE\tPROFILES")
			for _, s := range svc.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.Name, s.Subject, s.Latent.Name, s.Observable.Name, strings.Join(s.ProfileNames(), ","))
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <scenario>",
		Short: "Show a scenario's variables, likelihood and profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService()
			if err != nil {
				return err
			}
			s, err := svc.Get(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", s.Name, s.Description)
			fmt.Fprintf(out, "subject:    %s\n", s.Subject)
			fmt.Fprintf(out, "latent:     %s {%s}\n", s.Latent.Name, strings.Join(s.Latent.Values, ", "))
			fmt.Fprintf(out, "observable: %s {%s}\n\n", s.Observable.Name, strings.Join(s.Observable.Values, ", "))

			fmt.Fprintf(out, "P(%s | %s)\n", s.Observable.Name, s.Latent.Name)
			tw := newTable(out)
			fmt.Fprintln(tw, header(s.Latent.Name, s.Observable.Values))
			for i, v := range s.Latent.Values {
				fmt.Fprintln(tw, row(v, s.Likelihood[i]))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out)
			tw = newTable(out)
			fmt.Fprintln(tw, header("PROFILE\tOBSERVER\tMODE", s.Latent.Values))
			for _, p := range s.Profiles {
				fmt.Fprintln(tw, row(fmt.Sprintf("%s\t%s\t%s", p.Name, p.Observer, p.EffectiveMode()), p.Prior))
			}
			return tw.Flush()
		},
	}
}
