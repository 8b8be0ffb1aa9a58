// Command labyrinth solves mazes with A* and tabular Q-Learning, either
// once from the command line or continuously behind a live training
// dashboard. See runApp for the two modes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"labyrinth/config"
	"labyrinth/consoleview"
	"labyrinth/devserver"
	"labyrinth/engine"
	"labyrinth/grid"
	"labyrinth/imageview"
)

var (
	configPath *string
	mazePath   *string
	startFlag  *string
	endFlag    *string
	algorithm  *string
	serve      *bool
	imageOut   *string
)

// config.yaml supplies the devserver's listen address and publish interval
// and, for both modes, the fallback maze path and the RNG seed; the flags
// below cover the rest.
func init() {
	configPath = flag.String("config", "./config.yaml", "path to devserver config")
	mazePath = flag.String("maze", "", "path to a doubled-grid text maze")
	startFlag = flag.String("start", "0,0", "logical start cell, as col,row")
	endFlag = flag.String("end", "", "logical end cell, as col,row")
	algorithm = flag.String("algorithm", "astar", "astar or qlearn")
	serve = flag.Bool("serve", false, "run the live training dashboard instead of solving once")
	imageOut = flag.String("image", "", "if set, write a PNG render of the solved path here")
	flag.Parse()
}

func parseCell(s string) (grid.Cell, error) {
	var col, row int
	if _, err := fmt.Sscanf(s, "%d,%d", &col, &row); err != nil {
		return grid.Cell{}, fmt.Errorf("invalid cell %q: %w", s, err)
	}
	return grid.Cell{Col: col, Row: row}, nil
}

func loadMaze(cfg *config.Config) (*grid.Grid, error) {
	path := *mazePath
	if path == "" {
		path = cfg.DemoMazePath
	}
	if path == "" {
		return nil, fmt.Errorf("no maze given: pass -maze or set demoMazePath in config")
	}
	return grid.LoadFile(path)
}

func runSolve(cfg *config.Config) error {
	maze, err := loadMaze(cfg)
	if err != nil {
		return err
	}

	start, err := parseCell(*startFlag)
	if err != nil {
		return err
	}
	if *endFlag == "" {
		return fmt.Errorf("-end is required")
	}
	end, err := parseCell(*endFlag)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e := engine.NewWithRNG(rand.New(rand.NewSource(seed)))
	e.SetMaze(maze)

	var path []grid.Cell
	switch *algorithm {
	case "qlearn":
		result := e.QFind(start, end)
		if !result.OK {
			return errors.New(result.Message)
		}
		path = e.Path()
	default:
		if err := e.SetStart(engine.Point{X: float64(start.Col), Y: float64(start.Row)}, 1, 1); err != nil {
			return err
		}
		if err := e.SetEnd(engine.Point{X: float64(end.Col), Y: float64(end.Row)}, 1, 1); err != nil {
			return err
		}
		path = e.Path()
	}

	if err := consoleview.Render(os.Stdout, maze, path); err != nil {
		return err
	}

	if *imageOut != "" {
		f, err := os.Create(*imageOut)
		if err != nil {
			return fmt.Errorf("opening %s: %w", *imageOut, err)
		}
		defer f.Close()
		if err := imageview.Render(f, maze, path, 12); err != nil {
			return fmt.Errorf("rendering %s: %w", *imageOut, err)
		}
	}

	return nil
}

func runServe(cfg *config.Config) error {
	maze, err := loadMaze(cfg)
	if err != nil {
		return err
	}

	start, err := parseCell(*startFlag)
	if err != nil {
		return err
	}
	if *endFlag == "" {
		return fmt.Errorf("-end is required")
	}
	end, err := parseCell(*endFlag)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	trainer := devserver.NewTrainer(maze, start, end, rng, cfg.PublishIntervalEpisodes)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	addr := cfg.Host + ":" + cfg.Port
	fmt.Printf("labyrinth devserver listening on %s\n", addr)
	return devserver.Run(ctx, addr, maze, trainer)
}

func runApp() error {
	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if *serve {
		return runServe(cfg)
	}
	return runSolve(cfg)
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
