package main

import (
	"cemeterycore/internal/core"
	"cemeterycore/pkg/domain"
	"context"
	"strconv"
)

func runRecord(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "add", "list", "show", "approve", "reject", "delete")
	if err != nil {
		return err
	}
	var capability domain.Capability
	switch action {
	case "list", "show":
		capability = domain.CapView
	case "add":
		capability = domain.CapCreateRecords
	default:
		capability = domain.CapApproveRecords
	}
	user, err := a.authorize(ctx, capability)
	if err != nil {
		return err
	}
	fs := newFlagSet("record "+action, a)
	switch action {
	case "add":
		var in core.BurialRecordInput
		fs.StringVar(&in.Name, "name", "", "name of the deceased")
		fs.StringVar(&in.FatherName, "father", "", "father's name")
		fs.StringVar(&in.DateOfDeath, "died", "", "date of death (YYYY-MM-DD)")
		fs.StringVar(&in.Gender, "gender", "", "male or female")
		fs.IntVar(&in.Age, "age", 0, "age at death")
		fs.StringVar(&in.Religion, "religion", "", "religion")
		fs.StringVar(&in.PlotID, "plot", "", "plot id")
		grave := fs.String("grave", "", "grave number within -plot, or a full grave id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		in.GraveID = *grave
		if n, err := strconv.Atoi(*grave); err == nil && in.PlotID != "" {
			in.GraveID = domain.GraveID(in.PlotID, n)
		}
		r, res, err := a.svc.AddBurialRecord(ctx, in)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("added burial record %s (pending approval)\n", r.ID)
	case "list":
		status := fs.String("status", "", "pending, approved or rejected")
		query := fs.String("q", "", "name or father's name substring")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		records, err := a.svc.ListBurialRecords(ctx, core.RecordFilter{Status: domain.RecordStatus(*status), Query: *query})
		if err != nil {
			return err
		}
		tw := table(a.out, "ID", "NAME", "DIED", "GRAVE", "STATUS", "APPROVED BY")
		for _, r := range records {
			row(tw, r.ID, r.Name, r.DateOfDeath, r.GraveID, r.Status, optional(r.ApprovedBy))
		}
		return tw.Flush()
	case "show":
		id := fs.String("id", "", "record id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		r, err := a.svc.GetBurialRecord(ctx, *id)
		if err != nil {
			return err
		}
		return writeJSON(a.out, r)
	case "approve":
		id := fs.String("id", "", "record id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		r, res, err := a.svc.ApproveBurialRecord(ctx, *id, user.Username)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("approved burial record %s by %s\n", r.ID, optional(r.ApprovedBy))
	case "reject":
		id := fs.String("id", "", "record id")
		notes := fs.String("notes", "", "reason for rejection")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		r, res, err := a.svc.RejectBurialRecord(ctx, *id, *notes)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("rejected burial record %s\n", r.ID)
	case "delete":
		id := fs.String("id", "", "record id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		res, err := a.svc.DeleteBurialRecord(ctx, *id)
		if err != nil {
			return err
		}
		reportViolations(a, res)
		a.printf("deleted burial record %s\n", *id)
	}
	return nil
}
