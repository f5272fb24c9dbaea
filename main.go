// Command cpgrid tessellates corner-point grids.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/chazu/cpgrid/pkg/bridge"
	"github.com/chazu/cpgrid/pkg/config"
	"github.com/chazu/cpgrid/pkg/grid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds the state shared by all commands.
type cli struct {
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "cpgrid",
		Short: "Tessellate corner-point reservoir grids",
		Long: `cpgrid turns a corner-point grid into a polygon mesh of the interfaces
between its active cells, splitting faulted walls where the layers on
either side cross.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgPath)
			if err != nil {
				return err
			}
			logger, err := cfg.Logging.Logger(c.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "cpgrid.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.tessellateCmd(), c.configCmd())
	return root
}

func (c *cli) tessellateCmd() *cobra.Command {
	var (
		nx, ny, nz int
		throw      float64
		crossing   float64
		out        string
		filter     string
		jsonPath   string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "tessellate [scenario.yaml ...]",
		Short: "Tessellate scenario files or a generated faulted box",
		Long: `Builds a grid from a scenario file, or from the size and fault flags when
no file is given, tessellates it and prints mesh statistics. Several files
are tessellated concurrently; exports need a single scenario.

The generated box drops every column east of nx/2 by --throw and tilts the
wall at nx/2 by --crossing so that its layers cross.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				c.cfg.Export.STL = out
			}
			if cmd.Flags().Changed("filter") {
				c.cfg.Export.Filter = filter
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			w := cmd.OutOrStdout()

			if len(args) > 1 {
				if c.cfg.Export.STL != "" || jsonPath != "" {
					return fmt.Errorf("exports need a single scenario, got %d", len(args))
				}
				return c.batch(ctx, w, args)
			}

			var (
				g   *grid.Grid
				err error
			)
			if len(args) == 1 {
				g, err = loadGrid(args[0])
			} else {
				g, err = boxScenario(nx, ny, nz, throw, crossing).Build()
			}
			if err != nil {
				return err
			}

			app := NewApp(c.cfg, c.logger)
			result, err := app.Tessellate(ctx, g)
			if err != nil {
				return err
			}
			printStats(w, result)

			if path, err := app.Export(result); err != nil {
				return err
			} else if path != "" {
				fmt.Fprintf(w, "wrote %s\n", path)
			}
			if jsonPath != "" {
				if err := app.WriteJSON(jsonPath, result); err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %s\n", jsonPath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&nx, "nx", 8, "columns along i")
	cmd.Flags().IntVar(&ny, "ny", 6, "columns along j")
	cmd.Flags().IntVar(&nz, "nz", 5, "layers")
	cmd.Flags().Float64Var(&throw, "throw", 0.5, "vertical throw of the eastern half, in layers")
	cmd.Flags().Float64Var(&crossing, "crossing", 0, "opposite shifts at the two ends of the fault, in layers")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write an STL file")
	cmd.Flags().StringVar(&filter, "filter", config.FilterAll, "STL content: all, boundary or faults")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the triangulated surfaces as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort tessellation after this long (0 for no limit)")
	return cmd
}

// batch tessellates several scenarios concurrently and prints their stats
// in argument order.
func (c *cli) batch(ctx context.Context, w io.Writer, paths []string) error {
	app := NewApp(c.cfg, c.logger)
	results := make([]*Result, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for n, path := range paths {
		eg.Go(func() error {
			g, err := loadGrid(path)
			if err != nil {
				return err
			}
			r, err := app.Tessellate(egCtx, g)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[n] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for n, r := range results {
		fmt.Fprintf(w, "== %s\n", paths[n])
		printStats(w, r)
	}
	return nil
}

func loadGrid(path string) (*grid.Grid, error) {
	s, err := grid.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return s.Build()
}

// boxScenario describes a unit-cell box with a fault at i = nx/2.
func boxScenario(nx, ny, nz int, throw, crossing float64) *grid.Scenario {
	s := &grid.Scenario{NX: nx, NY: ny, NZ: nz}
	for j := 0; j < ny; j++ {
		for i := nx / 2; i < nx; i++ {
			if throw != 0 {
				s.Throws = append(s.Throws, grid.Throw{I: i, J: j, DZ: throw})
			}
		}
		if crossing != 0 && nx > 1 {
			i := nx / 2
			s.Throws = append(s.Throws,
				grid.Throw{I: i, J: j, DZ: crossing, Pillar: &[2]int{0, 0}},
				grid.Throw{I: i, J: j, DZ: -crossing, Pillar: &[2]int{0, 1}})
		}
	}
	return s
}

func printStats(w io.Writer, r *Result) {
	s := r.Stats
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "cells     %d\n", s.Cells)
	fmt.Fprintf(w, "vertices  %d\n", s.Vertices)
	fmt.Fprintf(w, "polygons  %d (I %d, J %d, K %d; %d on faults)\n", s.Polygons,
		s.ByOrientation[bridge.OrientationI], s.ByOrientation[bridge.OrientationJ],
		s.ByOrientation[bridge.OrientationK], s.FaultPolygons)
	fmt.Fprintf(w, "edges     %d (%d on faults)\n", s.Edges, s.FaultEdges)
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfgPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
