package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andresmejia3/posecoach/internal/pose"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List the supported exercises and the joint each one tracks",
	Run: func(cmd *cobra.Command, args []string) {
		runExercises(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exercisesCmd)
}

func runExercises(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "EXERCISE\tJOINT\tLANDMARKS")
	fmt.Fprintln(w, "--------\t-----\t---------")

	for _, e := range pose.Exercises() {
		j, _ := e.Joint()
		fmt.Fprintf(w, "%s\t%s\t%s\n", e, j.Vertex, j)
	}
	w.Flush()
}
