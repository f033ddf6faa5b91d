package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nidhogg/animseq/internal/role"
	"github.com/nidhogg/animseq/internal/sequence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print the resulting sequence",
	RunE:  runSimulation,
}

func init() {
	addSimulationFlags(rootCmd)
	addSimulationFlags(runCmd)
	rootCmd.Flags().String("role", "", "Role label (default: picked at random)")
	runCmd.Flags().String("role", "", "Role label (default: picked at random)")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	a, err := setup(cmd, consoleObserver{w: out})
	if err != nil {
		return err
	}
	defer a.Close()

	var rl role.Role
	if label, _ := cmd.Flags().GetString("role"); label != "" {
		rl, err = role.Parse(label, a.roles)
	} else {
		rl, err = role.Pick(a.rng, a.roles)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[role selected] -> %s\n", rl)
	a.logger.Debug("run configured", zap.Int64("seed", a.seed), zap.String("role", string(rl)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := a.sim.Run(ctx, rl)
	printFinal(out, res)
	if runErr != nil {
		a.logger.Error("simulation aborted", zap.String("reason", string(res.Reason)), zap.Error(runErr))
		return runErr
	}
	return nil
}

// consoleObserver prints the running state of a simulation.
type consoleObserver struct {
	w io.Writer
}

func (c consoleObserver) OnEvent(_ context.Context, ev sequence.Event) error {
	switch ev.Type {
	case sequence.EventStep:
		prev := ev.History[:len(ev.History)-1]
		fmt.Fprintf(c.w, "\n[Step %d] current sequence: %v\n", ev.Step, prev)
		fmt.Fprintf(c.w, "suggested: %v -> chosen: %s\n", ev.Candidates, ev.Chosen)
	case sequence.EventStopped:
		switch ev.Reason {
		case sequence.StopTriggerElapsed, sequence.StopNoCandidates, sequence.StopGatewayError:
			// The run ended inside a step, before anything was chosen.
			fmt.Fprintf(c.w, "\n[Step %d] current sequence: %v\n", len(ev.History), ev.History)
		}
		fmt.Fprintf(c.w, "\n%s\n", describeStop(ev.Reason))
	}
	return nil
}

func describeStop(r sequence.StopReason) string {
	switch r {
	case sequence.StopTriggerElapsed:
		return fmt.Sprintf("[stop] %d steps passed after a trigger action. Simulation finished.", sequence.TriggerElapsedSteps)
	case sequence.StopNoCandidates:
		return "[stop] no usable follow-up animation. Simulation finished."
	case sequence.StopBudgetExhausted:
		return "[stop] step budget exhausted. Simulation finished."
	case sequence.StopGatewayError:
		return "[abort] model query failed."
	case sequence.StopCanceled:
		return "[abort] simulation canceled."
	default:
		return "[stop] " + string(r)
	}
}

func printFinal(w io.Writer, res *sequence.Result) {
	fmt.Fprintln(w, "\n[final action sequence]")
	for i, a := range res.History {
		fmt.Fprintf(w, "%d. %s\n", i+1, a)
	}
}
