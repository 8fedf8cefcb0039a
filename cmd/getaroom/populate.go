package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/getaroom/internal/service"
	"github.com/noah-isme/getaroom/internal/source"
	"github.com/noah-isme/getaroom/pkg/database"
)

func (a *app) populate(ctx context.Context, sourceFile string, stdout io.Writer) error {
	rows, err := readTimetable(sourceFile)
	if err != nil {
		return err
	}
	names, err := readBuildingNames(a.cfg.Ingestion.BuildingLookupFile)
	if err != nil {
		return err
	}

	if err := database.RunMigrations(a.db.DB, a.logger); err != nil {
		return err
	}

	ingest := service.NewIngestService(
		a.buildings,
		a.rooms,
		a.slots,
		names,
		a.db,
		a.cache,
		a.metrics,
		validator.New(),
		a.logger,
		service.IngestOptions{DedupTimeSlots: a.cfg.Ingestion.DedupTimeSlots},
	)

	fmt.Fprintf(stdout, "Populating from %s (%d rows)...\n", sourceFile, len(rows))
	summary, err := ingest.Populate(ctx, rows)
	if summary != nil {
		writeSummary(stdout, summary)
	}
	return err
}

func readTimetable(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timetable: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return source.ReadRows(f)
}

func readBuildingNames(path string) (*source.BuildingNames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open building lookup: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return source.LoadBuildingNames(f)
}

func writeSummary(w io.Writer, s *service.IngestSummary) {
	fmt.Fprintf(w, "%d rows: %d matched, %d inserted, %d duplicate, %d skipped, %d failed\n",
		s.Rows, s.Matched, s.Inserted, s.Duplicates, s.Skipped, s.Failed)
	for _, f := range s.Failures {
		fmt.Fprintf(w, "  line %d [%s] %s: %s\n", f.Line, f.Code, f.Text, f.Reason)
	}
	fmt.Fprintf(w, "Store holds %d buildings, %d rooms, %d time slots\n", s.Buildings, s.Rooms, s.TimeSlots)
}
