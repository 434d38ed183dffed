package root

import (
	goflag "flag"

	"github.com/spf13/cobra"

	"github.com/assignsat/assignsat/cmd/timetable"
	"github.com/assignsat/assignsat/cmd/validate"
	"github.com/assignsat/assignsat/cmd/wsp"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "assignsat",
		Short: "Assignsat solves labeled assignment problems over a SAT engine",
		Long: `Assignsat encodes exam timetabling and workflow satisfiability
instances as labeled constraints over a SAT engine, enumerates distinct
solutions, explains infeasibility through unsat cores, and relaxes
timetabling instances until they admit a solution.`,
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML run configuration file")
	// glog registers its flags on the standard flag package.
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	// add sub-commands
	rootCmd.AddCommand(wsp.NewWSPCommand())
	rootCmd.AddCommand(timetable.NewTimetableCommand())
	rootCmd.AddCommand(validate.NewValidateCommand())

	return rootCmd
}
