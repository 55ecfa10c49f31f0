package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	commonmetrics "github.com/Merco74/ScoutPlateform/common/metrics"
	"github.com/Merco74/ScoutPlateform/internal/app"
	"github.com/Merco74/ScoutPlateform/internal/config"
	"github.com/Merco74/ScoutPlateform/internal/db"
	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("roster", pflag.ExitOnError)
	category := flags.StringP("category", "c", "", "category to list (scout, guide, louveteau)")
	flags.String("database.host", "localhost", "database host")
	flags.String("database.port", "5432", "database port")
	flags.String("database.name", "scouts_cluses", "database name")
	_ = flags.Parse(os.Args[1:])

	if err := run(context.Background(), flags, *category, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *pflag.FlagSet, rawCategory string, out io.Writer) error {
	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		return err
	}

	table, err := app.CategoryTable(cfg.Categories)
	if err != nil {
		return err
	}
	category := registration.ParseCategory(rawCategory)
	rule, ok := table.Lookup(category)
	if !ok {
		return fmt.Errorf("unknown category %q, expected one of %v", rawCategory, table.Names())
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(database)

	repo := registration.NewRepository(database, commonmetrics.NewMock())
	records, err := repo.ListByCategory(ctx, category)
	if err != nil {
		return err
	}
	registration.SortBySurname(records)

	slog.Debug("roster loaded", "category", category, "count", len(records))
	printRoster(out, rule.DisplayName, records)
	return nil
}

func printRoster(out io.Writer, title string, records []registration.Record) {
	color.New(color.FgCyan, color.Bold).Fprintf(out, "\n=== %s (%d) ===\n", title, len(records))
	if len(records) == 0 {
		color.New(color.FgYellow).Fprintln(out, "Aucune inscription.")
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Nom", "Prénom", "Âge", "Téléphone", "Autorisation", "Fiche sanitaire"})
	table.SetAutoFormatHeaders(false)
	for _, rec := range records {
		phone := rec.MobilePhone
		if phone == "" {
			phone = rec.HomePhone
		}
		table.Append([]string{
			rec.Surname,
			rec.GivenName,
			strconv.Itoa(rec.Age),
			phone,
			rec.AuthorizationPdfURL,
			rec.SanitaryPdfURL,
		})
	}
	table.Render()
}
