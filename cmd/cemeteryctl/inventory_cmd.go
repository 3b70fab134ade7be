package main

import (
	"cemeterycore/internal/core"
	"cemeterycore/pkg/domain"
	"context"
	"strconv"
	"strings"
)

func runGraveyard(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "add", "list", "update", "delete")
	if err != nil {
		return err
	}
	capability := domain.CapManageInventory
	if action == "list" {
		capability = domain.CapView
	}
	if _, err := a.authorize(ctx, capability); err != nil {
		return err
	}
	fs := newFlagSet("graveyard "+action, a)
	switch action {
	case "add":
		name := fs.String("name", "", "graveyard name")
		location := fs.String("location", "", "address")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		g, res, err := a.svc.AddGraveyard(ctx, core.GraveyardInput{Name: *name, Location: *location})
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("added graveyard %s\n", g.ID)
	case "list":
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		graveyards, err := a.svc.ListGraveyards(ctx)
		if err != nil {
			return err
		}
		tw := table(a.out, "ID", "NAME", "LOCATION", "PLOTS")
		for _, g := range graveyards {
			row(tw, g.ID, g.Name, g.Location, g.TotalPlots)
		}
		return tw.Flush()
	case "update":
		id := fs.String("id", "", "graveyard id")
		name := fs.String("name", "", "new name")
		location := fs.String("location", "", "new address")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *id == "" {
			return usageErr("graveyard update requires -id")
		}
		g, res, err := a.svc.UpdateGraveyard(ctx, *id, func(g *core.Graveyard) error {
			if v := strings.TrimSpace(*name); v != "" {
				g.Name = v
			}
			if v := strings.TrimSpace(*location); v != "" {
				g.Location = v
			}
			return nil
		})
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("updated graveyard %s\n", g.ID)
	case "delete":
		id := fs.String("id", "", "graveyard id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *id == "" {
			return usageErr("graveyard delete requires -id")
		}
		res, err := a.svc.DeleteGraveyard(ctx, *id)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("deleted graveyard %s with its plots and graves\n", *id)
	}
	return nil
}

func runPlot(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "add", "list", "rename", "delete")
	if err != nil {
		return err
	}
	capability := domain.CapManageInventory
	if action == "list" {
		capability = domain.CapView
	}
	if _, err := a.authorize(ctx, capability); err != nil {
		return err
	}
	fs := newFlagSet("plot "+action, a)
	switch action {
	case "add":
		graveyard := fs.String("graveyard", "", "owning graveyard id")
		number := fs.String("number", "", "plot label, for example A1")
		rows := fs.Int("rows", 0, "grave rows")
		cols := fs.Int("cols", 0, "grave columns")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		p, res, err := a.svc.AddPlot(ctx, core.PlotInput{GraveyardID: *graveyard, PlotNumber: *number, Rows: *rows, Columns: *cols})
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("added plot %s with %d graves\n", p.ID, p.TotalGraves)
	case "list":
		graveyard := fs.String("graveyard", "", "only plots of this graveyard")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		plots, err := a.svc.ListPlots(ctx, *graveyard)
		if err != nil {
			return err
		}
		tw := table(a.out, "ID", "NUMBER", "GRAVEYARD", "ROWS", "COLS", "GRAVES")
		for _, p := range plots {
			row(tw, p.ID, p.PlotNumber, p.GraveyardID, p.Rows, p.Columns, p.TotalGraves)
		}
		return tw.Flush()
	case "rename":
		id := fs.String("id", "", "plot id")
		number := fs.String("number", "", "new plot label")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *id == "" || strings.TrimSpace(*number) == "" {
			return usageErr("plot rename requires -id and -number")
		}
		p, res, err := a.svc.UpdatePlot(ctx, *id, func(p *core.Plot) error {
			p.PlotNumber = strings.TrimSpace(*number)
			return nil
		})
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("renamed plot %s to %s\n", p.ID, p.PlotNumber)
	case "delete":
		id := fs.String("id", "", "plot id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *id == "" {
			return usageErr("plot delete requires -id")
		}
		res, err := a.svc.DeletePlot(ctx, *id)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("deleted plot %s with its graves\n", *id)
	}
	return nil
}

func runGrave(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "list", "reserve", "release", "set-status")
	if err != nil {
		return err
	}
	capability := domain.CapManageInventory
	if action == "list" {
		capability = domain.CapView
	}
	if _, err := a.authorize(ctx, capability); err != nil {
		return err
	}
	fs := newFlagSet("grave "+action, a)
	plot := fs.String("plot", "", "plot id; positional arguments are then grave numbers")
	switch action {
	case "list":
		status := fs.String("status", "", "available or unavailable")
		query := fs.String("q", "", "grave number or holder substring")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		graves, err := a.svc.ListGraves(ctx, core.GraveFilter{PlotID: *plot, Status: domain.GraveStatus(*status), Query: *query})
		if err != nil {
			return err
		}
		tw := table(a.out, "ID", "PLOT", "NUMBER", "STATUS", "RESERVED BY")
		for _, g := range graves {
			row(tw, g.ID, g.PlotID, g.GraveNumber, g.Status, optional(g.ReservedBy))
		}
		return tw.Flush()
	case "reserve":
		holder := fs.String("holder", "", "name the graves are reserved for")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		ids, err := graveIDs(*plot, fs.Args())
		if err != nil {
			return err
		}
		n, res, err := a.svc.BulkReserveGraves(ctx, ids, *holder)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("reserved %d of %d graves\n", n, len(ids))
	case "release":
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		ids, err := graveIDs(*plot, fs.Args())
		if err != nil {
			return err
		}
		n, res, err := a.svc.BulkReleaseGraves(ctx, ids)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("released %d of %d graves\n", n, len(ids))
	case "set-status":
		status := fs.String("status", "", "available or unavailable")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		ids, err := graveIDs(*plot, fs.Args())
		if err != nil {
			return err
		}
		n, res, err := a.svc.BulkUpdateGraves(ctx, ids, core.SetGraveStatus(domain.GraveStatus(*status)))
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("updated %d of %d graves\n", n, len(ids))
	}
	return nil
}

// graveIDs resolves positional grave arguments. With a plot id they are grave
// numbers, otherwise full grave ids.
func graveIDs(plotID string, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, usageErr("expected at least one grave")
	}
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if plotID == "" {
			ids = append(ids, arg)
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, usageErr("grave number %q is not a positive integer", arg)
		}
		ids = append(ids, domain.GraveID(plotID, n))
	}
	return ids, nil
}

func runStats(ctx context.Context, a *app, args []string) error {
	if _, err := a.authorize(ctx, domain.CapView); err != nil {
		return err
	}
	fs := newFlagSet("stats", a)
	graveyard := fs.String("graveyard", "", "limit statistics to one graveyard")
	metrics := fs.Bool("metrics", false, "print Prometheus metrics instead of JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *metrics {
		return writeMetrics(a.out, a.metrics)
	}
	var (
		stats core.Stats
		err   error
	)
	if *graveyard != "" {
		stats, err = a.svc.GraveyardStats(ctx, *graveyard)
	} else {
		stats, err = a.svc.OccupancyStats(ctx)
	}
	if err != nil {
		return err
	}
	return writeJSON(a.out, stats)
}
