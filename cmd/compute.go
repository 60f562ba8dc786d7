package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"navarch/bootstrap"
	"navarch/core"
	"navarch/service"
	"navarch/storage"
)

// initService wires a HydroService over the configured storage backend,
// without the shared cache; CLI invocations are one-shot.
func initService() (*service.HydroService, storage.Store, func(), error) {
	store, cleanup, err := initStore()
	if err != nil {
		return nil, nil, nil, err
	}
	_, sugar, err := bootstrap.InitLogger("error", false)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	svc, err := service.NewHydroService(store, nil, service.Options{}, sugar)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, store, cleanup, nil
}

// newHydroCmd creates the 'hydro' subcommand
func newHydroCmd() *cobra.Command {
	var draft, trim float64
	var loadcaseID string

	cmd := &cobra.Command{
		Use:   "hydro <vessel-id>",
		Short: "Compute hydrostatics at one draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			svc, _, cleanup, err := initService()
			if err != nil {
				return err
			}
			defer cleanup()

			s := newSpinner("Computing hydrostatics...")
			res, err := svc.ComputeHydrostatics(ctx, args[0], loadcaseID, draft, trim)
			stopSpinner(s)
			if err != nil {
				return err
			}
			res = core.RoundHydroResult(res)

			if outputJSON {
				return printJSON(res)
			}

			headerColor.Printf("Hydrostatics at draft %.3f m\n", res.Draft)
			fmt.Printf("  Volume        %12.3f m³\n", res.Volume)
			fmt.Printf("  Displacement  %12.3f t\n", res.Displacement)
			fmt.Printf("  KB            %12.4f m\n", res.KB)
			fmt.Printf("  LCB           %12.4f m\n", res.LCB)
			fmt.Printf("  BMt           %12.4f m\n", res.BMt)
			fmt.Printf("  Awp           %12.3f m²\n", res.Awp)
			fmt.Printf("  LCF           %12.4f m\n", res.LCF)
			fmt.Printf("  Cb %.4f  Cp %.4f  Cm %.4f  Cwp %.4f\n", res.Cb, res.Cp, res.Cm, res.Cwp)
			if res.GMt != nil {
				fmt.Printf("  GMt           %12.4f m\n", *res.GMt)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&draft, "draft", 0, "Draft at midships, m")
	cmd.Flags().Float64Var(&trim, "trim", 0, "Trim angle, degrees")
	cmd.Flags().StringVar(&loadcaseID, "loadcase", "", "Loadcase ID for GM computation")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

// newTableCmd creates the 'table' subcommand
func newTableCmd() *cobra.Command {
	var minDraft, maxDraft float64
	var steps int
	var loadcaseID string

	cmd := &cobra.Command{
		Use:   "table <vessel-id>",
		Short: "Compute a hydrostatic table over a draft range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			if steps < 2 {
				return fmt.Errorf("steps must be at least 2")
			}
			if maxDraft <= minDraft {
				return fmt.Errorf("max draft must exceed min draft")
			}

			svc, _, cleanup, err := initService()
			if err != nil {
				return err
			}
			defer cleanup()

			drafts := make([]float64, steps)
			h := (maxDraft - minDraft) / float64(steps-1)
			for i := range drafts {
				drafts[i] = minDraft + float64(i)*h
			}

			s := newSpinner("Computing hydrostatic table...")
			results, err := svc.ComputeTable(ctx, args[0], loadcaseID, drafts)
			stopSpinner(s)
			if err != nil {
				return err
			}
			for i, res := range results {
				results[i] = core.RoundHydroResult(res)
			}

			if outputJSON {
				return printJSON(results)
			}

			headerColor.Printf("%-10s %-14s %-14s %-10s %-10s %-10s\n",
				"DRAFT", "VOLUME", "DISPL", "KB", "LCB", "Cb")
			for _, res := range results {
				fmt.Printf("%-10.3f %-14.2f %-14.2f %-10.4f %-10.4f %-10.4f\n",
					res.Draft, res.Volume, res.Displacement, res.KB, res.LCB, res.Cb)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&minDraft, "min", 0.5, "Minimum draft, m")
	cmd.Flags().Float64Var(&maxDraft, "max", 0, "Maximum draft, m")
	cmd.Flags().IntVar(&steps, "steps", 10, "Number of drafts")
	cmd.Flags().StringVar(&loadcaseID, "loadcase", "", "Loadcase ID for GM computation")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

// gzRequestFromFlags assembles the request shared by the gz and criteria
// subcommands.
func gzRequestFromFlags(loadcaseID string, maxAngle, increment, draft float64, method string) *core.GZRequest {
	return &core.GZRequest{
		LoadcaseID:     loadcaseID,
		MinAngle:       0,
		MaxAngle:       maxAngle,
		AngleIncrement: increment,
		Method:         core.StabilityMethod(method),
		Draft:          draft,
	}
}

// newGZCmd creates the 'gz' subcommand
func newGZCmd() *cobra.Command {
	var loadcaseID, method string
	var maxAngle, increment, draft float64

	cmd := &cobra.Command{
		Use:   "gz <vessel-id>",
		Short: "Compute a righting-arm curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			svc, _, cleanup, err := initService()
			if err != nil {
				return err
			}
			defer cleanup()

			s := newSpinner("Computing GZ curve...")
			curve, err := svc.ComputeGZCurve(ctx, args[0], gzRequestFromFlags(loadcaseID, maxAngle, increment, draft, method))
			stopSpinner(s)
			if err != nil {
				return err
			}
			curve = core.RoundStabilityCurve(curve)

			if outputJSON {
				return printJSON(curve)
			}

			headerColor.Printf("GZ curve (%s), draft %.3f m, GMt %.4f m\n", curve.Method, curve.Draft, curve.InitialGMt)
			fmt.Printf("%-10s %-12s %-12s\n", "HEEL °", "GZ m", "KN m")
			for _, p := range curve.Points {
				fmt.Printf("%-10.1f %-12.4f %-12.4f\n", p.HeelDeg, p.GZ, p.KN)
			}
			infoColor.Printf("Max GZ %.4f m at %.1f°\n", curve.MaxGZ, curve.AngleAtMaxGZ)
			return nil
		},
	}

	addGZFlags(cmd, &loadcaseID, &method, &maxAngle, &increment, &draft)
	return cmd
}

// newCriteriaCmd creates the 'criteria' subcommand
func newCriteriaCmd() *cobra.Command {
	var loadcaseID, method string
	var maxAngle, increment, draft float64

	cmd := &cobra.Command{
		Use:   "criteria <vessel-id>",
		Short: "Check intact stability criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			svc, _, cleanup, err := initService()
			if err != nil {
				return err
			}
			defer cleanup()

			s := newSpinner("Checking stability criteria...")
			result, _, err := svc.CheckCriteria(ctx, args[0], gzRequestFromFlags(loadcaseID, maxAngle, increment, draft, method))
			stopSpinner(s)
			if err != nil {
				return err
			}

			if outputJSON {
				return printJSON(result)
			}

			headerColor.Println(result.Standard)
			for _, cr := range result.Criteria {
				mark := successColor.Sprint("✓")
				if !cr.Passed {
					mark = errorColor.Sprint("✗")
				}
				fmt.Printf("%s %-32s required %8.4f %-6s actual %8.4f", mark, cr.Name, cr.Required, cr.Unit, cr.Actual)
				if cr.Notes != "" {
					warningColor.Printf("  (%s)", cr.Notes)
				}
				fmt.Println()
			}
			if result.AllPassed {
				successColor.Println("All criteria passed")
			} else {
				errorColor.Println("One or more criteria failed")
			}
			return nil
		},
	}

	addGZFlags(cmd, &loadcaseID, &method, &maxAngle, &increment, &draft)
	return cmd
}

func addGZFlags(cmd *cobra.Command, loadcaseID, method *string, maxAngle, increment, draft *float64) {
	cmd.Flags().StringVar(loadcaseID, "loadcase", "", "Loadcase ID (must carry KG)")
	cmd.Flags().StringVar(method, "method", string(core.MethodWallSided), "Stability method: wall_sided or full_immersion")
	cmd.Flags().Float64Var(maxAngle, "max-angle", 60, "Maximum heel angle, degrees")
	cmd.Flags().Float64Var(increment, "increment", 2.5, "Angle increment, degrees")
	cmd.Flags().Float64Var(draft, "draft", 0, "Draft, m (0 = design draft)")
	_ = cmd.MarkFlagRequired("loadcase")
}
