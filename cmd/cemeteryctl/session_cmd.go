package main

import (
	"cemeterycore/pkg/domain"
	"context"
)

func runSession(ctx context.Context, a *app, args []string) error {
	action, rest, err := subcommand(args, "start", "show", "end")
	if err != nil {
		return err
	}
	switch action {
	case "start":
		fs := newFlagSet("session start", a)
		username := fs.String("user", "", "username")
		email := fs.String("email", "", "email address")
		role := fs.String("role", string(domain.RoleVisitor), "admin, staff or visitor")
		if err := parseFlags(fs, rest); err != nil {
			return err
		}
		if *username == "" {
			return usageErr("session start requires -user")
		}
		u, err := a.sessions.Start(ctx, *username, *email, domain.Role(*role))
		if err != nil {
			return err
		}
		a.logger.Info("session started", "user", u.Username, "role", u.Role)
		a.printf("signed in as %s (%s)\n", u.Username, u.Role)
	case "show":
		u, ok, err := a.sessions.Current(ctx)
		if err != nil {
			return err
		}
		if !ok {
			a.printf("not signed in\n")
			return nil
		}
		a.printf("%s <%s> role=%s since %s\n", u.Username, u.Email, u.Role, u.CreatedAt.Format(timeLayout))
	case "end":
		if err := a.sessions.End(ctx); err != nil {
			return err
		}
		a.printf("signed out\n")
	}
	return nil
}
