// Command hexmap generates, inspects, edits and triangulates hex maps.
//
//	hexmap generate [-name n] [-out file] [-seed s]
//	hexmap info     [-name n | -file f]
//	hexmap mesh     [-name n | -file f] [-workers w]
//	hexmap export   [-name n | -file f] -out map.obj
//	hexmap edit     [-name n | -file f] -script edits.yaml
//	hexmap run      [-name n | -file f] [-ticks t]   serves the HTTP API when api.addr is set
//	hexmap list
//	hexmap delete   -name n
//
// Without -name or -file a command opens the most recently saved map. Map
// files store no surface seed; a map loaded with -file takes its heights
// from map.seed in the configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/lookout/internal/api"
	"github.com/talgya/lookout/internal/config"
	"github.com/talgya/lookout/internal/editor"
	"github.com/talgya/lookout/internal/engine"
	"github.com/talgya/lookout/internal/export"
	"github.com/talgya/lookout/internal/mapfile"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/persistence"
	"github.com/talgya/lookout/internal/triangulate"
	"github.com/talgya/lookout/internal/world"
)

type command struct {
	name string
	run  func(cfg *config.Config, args []string) error
}

var commands = []command{
	{"generate", runGenerate},
	{"info", runInfo},
	{"mesh", runMesh},
	{"export", runExport},
	{"edit", runEdit},
	{"run", runEngine},
	{"list", runList},
	{"delete", runDelete},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if path := os.Getenv("HEXMAP_CONFIG"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	setupLogging(cfg)

	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(cfg, os.Args[2:]); err != nil {
			slog.Error(c.name+" failed", "error", err)
			os.Exit(1)
		}
		return
	}
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hexmap <command> [flags]")
	fmt.Fprint(os.Stderr, "commands:")
	for _, c := range commands {
		fmt.Fprint(os.Stderr, " ", c.name)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "set HEXMAP_CONFIG to a YAML file to override the defaults")
}

// setupLogging writes human-readable logs to a terminal and JSON otherwise.
func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// source selects where a command reads its map from.
type source struct {
	name string
	file string
}

func (s *source) register(fs *flag.FlagSet) {
	fs.StringVar(&s.name, "name", "", "map name in the database (default: last saved map)")
	fs.StringVar(&s.file, "file", "", "map file path")
}

// load opens the map. A database handle is returned when the map came
// from the database, so callers can save it back. With neither flag set
// the most recently saved map is used.
func (s *source) load(cfg *config.Config) (*world.Grid, *persistence.DB, error) {
	if s.file != "" {
		// Map files carry no surface seed, so heights come from map.seed.
		slog.Info("loading map file", "path", s.file, "surface_seed", cfg.Map.Seed)
		g, err := mapfile.LoadFile(s.file, metrics.NewSurface(cfg.Map.Seed))
		return g, nil, err
	}
	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	if s.name == "" {
		name, err := db.LastMap()
		if err != nil {
			db.Close()
			if errors.Is(err, persistence.ErrMapNotFound) {
				return nil, nil, errors.New("no saved maps: pass -name or -file")
			}
			return nil, nil, err
		}
		slog.Info("using last saved map", "name", name)
		s.name = name
	}
	g, _, err := db.LoadMap(s.name)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return g, db, nil
}

// save writes the grid back to wherever it came from.
func (s *source) save(g *world.Grid, db *persistence.DB) error {
	if db != nil {
		_, err := db.SaveMap(s.name, g)
		return err
	}
	return mapfile.SaveFile(s.file, g)
}

// ── generate ───────────────────────────────────────────────────────

func runGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	name := fs.String("name", "", "store the map in the database under this name")
	out := fs.String("out", "", "write the map to this file")
	seed := fs.Int64("seed", cfg.Map.Seed, "generation seed (0 = random)")
	fs.Parse(args)
	if *name == "" && *out == "" {
		return errors.New("one of -name or -out is required")
	}

	gen := cfg.GenConfig()
	gen.Seed = *seed
	g, err := world.Generate(gen)
	if err != nil {
		return err
	}
	sp := world.PlaceStartPositions(g, gen.Cities, g.Surface().Seed())
	for _, c := range sp.Cities {
		slog.Info("city placed", "name", c.Name, "cell", c.Cell)
	}
	slog.Info("start positions placed", "cities", len(sp.Cities), "bases", len(sp.Bases), "roads", sp.Roads)

	if *out != "" {
		if err := mapfile.SaveFile(*out, g); err != nil {
			return err
		}
		slog.Info("map written", "path", *out)
	}
	if *name != "" {
		db, err := persistence.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.SaveMap(*name, g); err != nil {
			return err
		}
	}
	fmt.Printf("generated %dx%d map, seed %d\n", g.Width(), g.Height(), g.Surface().Seed())
	return nil
}

// ── info ───────────────────────────────────────────────────────────

func runInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var src source
	src.register(fs)
	fs.Parse(args)

	g, db, err := src.load(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	fmt.Printf("size      %dx%d (%s cells, %d chunks)\n",
		g.Width(), g.Height(), humanize.Comma(int64(g.Len())), len(g.Chunks()))
	fmt.Printf("seed      %d\n", g.Surface().Seed())

	counts := world.TerrainCounts(g)
	terrains := make([]world.Terrain, 0, len(counts))
	for t := range counts {
		terrains = append(terrains, t)
	}
	sort.Slice(terrains, func(i, j int) bool { return terrains[i] < terrains[j] })
	for _, t := range terrains {
		fmt.Printf("terrain   %-9s %d\n", t, counts[t])
	}

	var rivers, roads, underwater, walled, cities int
	for id := 0; id < g.Len(); id++ {
		c := g.Cell(id)
		if c.HasOutgoingRiver() {
			rivers++
		}
		roads += popcount(c.RoadMask())
		if c.IsUnderwater() {
			underwater++
		}
		if c.Walled() {
			walled++
		}
		if c.HasCity() {
			cities++
		}
	}
	fmt.Printf("rivers    %d edges\n", rivers)
	fmt.Printf("roads     %d edges\n", roads/2)
	fmt.Printf("water     %d cells\n", underwater)
	fmt.Printf("walls     %d cells, %d cities\n", walled, cities)
	for _, f := range world.Factions {
		base := "none"
		if id, ok := g.BaseCell(f); ok {
			base = fmt.Sprint(id)
		}
		fmt.Printf("%-9s base %s, armies %v\n", f, base, g.ArmyCells(f))
	}
	return nil
}

func popcount(m uint8) int {
	n := 0
	for ; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// ── mesh ───────────────────────────────────────────────────────────

func runMesh(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	var src source
	src.register(fs)
	workers := fs.Int("workers", cfg.Engine.Workers, "triangulation goroutines (0 = GOMAXPROCS)")
	fs.Parse(args)

	g, db, err := src.load(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	meshes, err := triangulate.BuildAll(context.Background(), g, *workers)
	if err != nil {
		return err
	}
	total := 0
	for _, m := range meshes {
		digest := m.Digest()
		total += m.TriangleCount()
		fmt.Printf("chunk %3d  %7s triangles  %3d placements  %s\n",
			m.Chunk, humanize.Comma(int64(m.TriangleCount())), len(m.Placements), digest[:16])
	}
	fmt.Printf("total %s triangles\n", humanize.Comma(int64(total)))
	return nil
}

// ── export ─────────────────────────────────────────────────────────

func runExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var src source
	src.register(fs)
	out := fs.String("out", "map.obj", "OBJ output path")
	fs.Parse(args)

	g, db, err := src.load(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	meshes, err := triangulate.BuildAll(context.Background(), g, cfg.Engine.Workers)
	if err != nil {
		return err
	}
	if err := export.WriteFile(*out, meshes); err != nil {
		return err
	}
	if st, err := os.Stat(*out); err == nil {
		slog.Info("mesh exported", "path", *out, "size", humanize.Bytes(uint64(st.Size())))
	}
	return nil
}

// ── edit ───────────────────────────────────────────────────────────

func runEdit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	var src source
	src.register(fs)
	script := fs.String("script", "", "YAML edit script")
	fs.Parse(args)
	if *script == "" {
		return errors.New("-script is required")
	}

	s, err := editor.LoadScript(*script)
	if err != nil {
		return err
	}
	g, db, err := src.load(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	presses, err := editor.New(g).Run(s)
	if err != nil {
		return err
	}
	slog.Info("edits applied", "strokes", len(s.Strokes), "presses", presses, "dirty_chunks", len(g.DirtyChunks()))
	return src.save(g, db)
}

// ── run ────────────────────────────────────────────────────────────

func runEngine(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var src source
	src.register(fs)
	ticks := fs.Uint64("ticks", uint64(cfg.Engine.MaxTicks), "stop after this many ticks (0 = until interrupted)")
	fs.Parse(args)

	g, db, err := src.load(cfg)
	if err != nil {
		return err
	}
	var saver engine.Saver
	if db != nil {
		defer db.Close()
		saver = db
	}

	eng := engine.NewEngine(g, saver)
	eng.Interval = cfg.Engine.TickInterval
	eng.MaxTicks = *ticks
	eng.AutosaveEvery = uint64(cfg.Engine.AutosaveEvery)
	eng.MapName = src.name
	eng.OnRebuild = func(tick uint64, chunks []int) {
		slog.Info("chunks rebuilt", "tick", tick, "chunks", len(chunks))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grp, ctx := errgroup.WithContext(ctx)
	engineCtx, stopEngine := context.WithCancel(ctx)
	defer stopEngine()
	grp.Go(func() error {
		// The API stops with the engine, whichever ends first.
		defer stopEngine()
		return eng.Run(engineCtx)
	})
	if cfg.API.Addr != "" {
		srv := &api.Server{Eng: eng, Addr: cfg.API.Addr, AdminKey: cfg.API.AdminKey}
		grp.Go(func() error { return srv.Start(engineCtx) })
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	if db == nil {
		return src.save(g, nil)
	}
	return nil
}

// ── store ──────────────────────────────────────────────────────────

func runList(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)

	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	maps, err := db.ListMaps()
	if err != nil {
		return err
	}
	for _, m := range maps {
		fmt.Printf("%-20s %3dx%-3d seed %-20d %8s  %s\n",
			m.Name, m.Width, m.Height, m.Seed, humanize.Bytes(uint64(m.Stored)), humanize.Time(m.UpdatedAt))
	}
	return nil
}

func runDelete(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	name := fs.String("name", "", "map name")
	fs.Parse(args)
	if *name == "" {
		return errors.New("-name is required")
	}

	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.DeleteMap(*name)
}
