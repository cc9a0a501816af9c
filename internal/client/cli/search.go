package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/yiviportal/internal/client/models"
)

// parseSearchArgs splits "search" arguments into the query and the
// enabled environments. The environment list comes from "--env a,b" or
// "--env=a,b"; without it every environment is enabled (nil map).
func parseSearchArgs(args []string) (string, map[models.Environment]bool, error) {
	var (
		words   []string
		envList string
		hasEnv  bool
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--env" || arg == "-env":
			if i+1 >= len(args) {
				return "", nil, usageError("search [query] [--env production,staging,demo]")
			}
			envList, hasEnv = args[i+1], true
			i++
		case strings.HasPrefix(arg, "--env=") || strings.HasPrefix(arg, "-env="):
			_, envList, _ = strings.Cut(arg, "=")
			hasEnv = true
		default:
			words = append(words, arg)
		}
	}

	query := strings.Join(words, " ")
	if !hasEnv {
		return query, nil, nil
	}

	enabled := map[models.Environment]bool{}
	for _, name := range strings.Split(envList, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		env, err := models.ParseEnvironment(name)
		if err != nil {
			return "", nil, err
		}
		enabled[env] = true
	}
	return query, enabled, nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	query, enabled, err := parseSearchArgs(args)
	if err != nil {
		return err
	}

	creds, err := a.credentials.Search(ctx, query, enabled)
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		fmt.Fprintln(a.out, "No credentials found")
		return nil
	}

	lang := a.language()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tENVIRONMENT\tISSUER\tATTRIBUTES")
	for _, c := range creds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name.In(lang), c.Environment, c.IssuerSlug, len(c.Attributes))
	}
	return tw.Flush()
}

func (a *App) Envs(ctx context.Context) error {
	envs, err := a.credentials.Environments(ctx)
	if err != nil {
		return err
	}
	lang := a.language()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENVIRONMENT\tSCHEME\tDESCRIPTION")
	for _, e := range envs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Environment, e.SchemeID, e.Description.In(lang))
	}
	return tw.Flush()
}
