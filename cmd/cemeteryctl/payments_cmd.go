package main

import (
	"cemeterycore/internal/ledger"
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func runPayment(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "add", "list", "show", "status", "delete", "summary", "past-due")
	if err != nil {
		return err
	}
	capability := domain.CapView
	switch action {
	case "add", "status", "delete":
		capability = domain.CapManagePayments
	}
	if _, err := a.authorize(ctx, capability); err != nil {
		return err
	}
	fs := newFlagSet("payment "+action, a)
	switch action {
	case "add":
		var in ledger.PaymentInput
		amount := fs.String("amount", "", "amount, for example 1250.50")
		service := fs.String("service", "", "plot_booking, burial_service, maintenance or other")
		status := fs.String("status", string(domain.PaymentPending), "paid, pending or overdue")
		fs.StringVar(&in.CustomerName, "customer", "", "customer name")
		fs.StringVar(&in.Date, "date", time.Now().UTC().Format(dateLayout), "payment date (YYYY-MM-DD)")
		fs.StringVar(&in.DueDate, "due", "", "due date (YYYY-MM-DD)")
		fs.StringVar(&in.PlotInfo, "plot", "", "plot reference, free text")
		fs.StringVar(&in.GraveInfo, "grave", "", "grave reference, free text")
		fs.StringVar(&in.Description, "description", "", "description")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *amount != "" {
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				return usageErr("invalid -amount %q", *amount)
			}
			in.Amount = d
		}
		in.ServiceType = domain.ServiceType(*service)
		in.Status = domain.PaymentStatus(*status)
		p, err := a.ledger.Add(ctx, in)
		if err != nil {
			return err
		}
		a.printf("added payment %s for %s\n", p.ID, money(p.Amount))
	case "list":
		var filter ledger.PaymentFilter
		status := fs.String("status", "", "paid, pending or overdue")
		service := fs.String("service", "", "service type")
		fs.StringVar(&filter.Query, "q", "", "customer, id or description substring")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		filter.Status = domain.PaymentStatus(*status)
		filter.ServiceType = domain.ServiceType(*service)
		printPayments(a, a.ledger.List(filter))
	case "show":
		id := fs.String("id", "", "payment id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		p, ok := a.ledger.Get(*id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityPayment, ID: *id}
		}
		return writeJSON(a.out, p)
	case "status":
		id := fs.String("id", "", "payment id")
		status := fs.String("status", "", "paid, pending or overdue")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		p, err := a.ledger.SetStatus(ctx, *id, domain.PaymentStatus(*status))
		if err != nil {
			return err
		}
		a.printf("payment %s is now %s\n", p.ID, p.Status)
	case "delete":
		id := fs.String("id", "", "payment id")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if err := a.ledger.Delete(ctx, *id); err != nil {
			return err
		}
		a.printf("deleted payment %s\n", *id)
	case "summary":
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		s := a.ledger.Summary()
		tw := table(a.out, "STATUS", "PAYMENTS", "AMOUNT")
		row(tw, domain.PaymentPaid, s.Paid, money(s.PaidAmount))
		row(tw, domain.PaymentPending, s.Pending, money(s.PendingAmount))
		row(tw, domain.PaymentOverdue, s.Overdue, money(s.OverdueAmount))
		row(tw, "total", s.Payments, money(s.TotalRevenue))
		return tw.Flush()
	case "past-due":
		asOf := fs.String("as-of", time.Now().UTC().Format(dateLayout), "report date (YYYY-MM-DD)")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		t, err := ledger.ParseDate(*asOf)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		printPayments(a, a.ledger.PastDuePending(t))
	}
	return nil
}

func printPayments(a *app, payments []ledger.Payment) {
	tw := table(a.out, "ID", "CUSTOMER", "AMOUNT", "DATE", "DUE", "SERVICE", "STATUS")
	for _, p := range payments {
		row(tw, p.ID, p.CustomerName, money(p.Amount), p.Date.Format(dateLayout), optionalDate(p.DueDate), p.ServiceType, p.Status)
	}
	_ = tw.Flush()
}
