package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"crosswarped.com/nonogrid"
	"crosswarped.com/nonogrid/internal/catalog"
)

func main() {

	file := flag.String("file", "", "The JSON file to load puzzle rules from")
	dbPath := flag.String("db", "", "The SQLite puzzle catalog to use")
	puzzleName := flag.String("puzzle", "", "The catalog puzzle to solve")
	saveName := flag.String("save", "", "Save the -file puzzle into the catalog under this name")
	list := flag.Bool("list", false, "List the puzzles in the catalog")
	steps := flag.Bool("steps", false, "Print the board after every applied move")

	timeout := flag.Duration("timeout", 1*time.Minute, "The timeout for the solver")

	profile := flag.Bool("profile", false, "Profile the solver")
	profileFile := flag.String("profile-file", "cpu.pprof", "The file to write the CPU profile to")
	memoryProfileFile := flag.String("memory-profile-file", "mem.pprof", "The file to write the memory profile to")

	flag.Parse()

	if *file != "" && *puzzleName != "" {
		fmt.Println("Cannot use both -file and -puzzle")
		os.Exit(1)
	}

	ctx := context.Background()

	var store *catalog.Store
	if *dbPath != "" {
		var err error
		if store, err = catalog.Open(*dbPath); err != nil {
			fmt.Println("Error opening catalog:", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *list {
		if store == nil {
			fmt.Println("-list requires -db")
			os.Exit(1)
		}
		entries, err := store.List(ctx)
		if err != nil {
			fmt.Println("Error listing catalog:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("%s\t%dx%d\t%s\n", e.Name, len(e.Rules.Rows), len(e.Rules.Cols), e.ID)
		}
		return
	}

	var rules nonogrid.Rules
	switch {
	case *file != "":
		var err error
		if rules, err = loadFromFile(*file); err != nil {
			fmt.Println("Error loading puzzle from file:", err)
			os.Exit(1)
		}
	case *puzzleName != "":
		if store == nil {
			fmt.Println("-puzzle requires -db")
			os.Exit(1)
		}
		var err error
		if rules, err = store.Load(ctx, *puzzleName); err != nil {
			fmt.Println("Error loading puzzle from catalog:", err)
			os.Exit(1)
		}
	default:
		fmt.Println("One of -file or -puzzle is required")
		os.Exit(1)
	}

	if *saveName != "" {
		if store == nil {
			fmt.Println("-save requires -db")
			os.Exit(1)
		}
		id, err := store.Save(ctx, *saveName, rules)
		if err != nil {
			fmt.Println("Error saving puzzle:", err)
			os.Exit(1)
		}
		fmt.Printf("Saved puzzle %q as %s\n", *saveName, id)
	}

	var mf *os.File
	if *profile {
		f, err := os.Create(*profileFile)
		if err != nil {
			fmt.Println("Error creating profile file:", err)
			os.Exit(1)
		}
		defer f.Close()

		mf, err = os.Create(*memoryProfileFile)
		if err != nil {
			fmt.Println("Error creating memory profile file:", err)
			os.Exit(1)
		}
		defer mf.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Println("Error starting CPU profile:", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	solver, err := nonogrid.NewSolver(rules, nil)
	if err != nil {
		fmt.Println("Error building solver:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	count := 0
	for move := range solver.Moves(ctx) {
		count++
		if *steps {
			fmt.Printf("Move %d: (%d,%d) = %d\n%s\n\n", count, move.Row, move.Col, move.Value, solver.Board().Repr())
		}
	}

	fmt.Println("--------------------------------")
	fmt.Println(solver.Board().Repr())
	fmt.Println("--------------------------------")

	if mf != nil {
		pprof.WriteHeapProfile(mf)
	}

	if ctx.Err() != nil {
		fmt.Println("Context error:", ctx.Err())
		os.Exit(1)
	}

	var unsolvable *nonogrid.UnsolvableError
	if err := solver.Err(); errors.As(err, &unsolvable) {
		fmt.Println("Unsolvable:", unsolvable.Reason)
		fmt.Println("Unsolved rows:", unsolvable.UnsolvedRows)
		fmt.Println("Unsolved columns:", unsolvable.UnsolvedCols)
		os.Exit(1)
	}

	fmt.Printf("Solved in %d moves\n", count)
}

func loadFromFile(path string) (nonogrid.Rules, error) {
	var rules nonogrid.Rules

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, err
	}
	if err := json.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rules, nil
}
