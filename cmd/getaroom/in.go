package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/noah-isme/getaroom/internal/models"
	"github.com/noah-isme/getaroom/internal/service"
)

const (
	formatText = "text"
	formatCSV  = "csv"
	formatPDF  = "pdf"
	formatXLSX = "xlsx"
)

type inOptions struct {
	building string
	format   string
	at       time.Time
	out      string
}

// parseInArgs accepts flags before or after the building code.
func parseInArgs(args []string, now time.Time) (inOptions, error) {
	opts := inOptions{at: now}
	var at string

	fs := flag.NewFlagSet("in", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.format, "format", formatText, "output format: text, csv, pdf or xlsx")
	fs.StringVar(&at, "at", "", "evaluate at this RFC3339 instant instead of now")
	fs.StringVar(&opts.out, "out", "", "write output to this file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() == 0 {
		return opts, errors.New("missing building code")
	}
	opts.building = strings.TrimSpace(fs.Arg(0))
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.building == "" {
		return opts, errors.New("missing building code")
	}

	switch opts.format {
	case formatText, formatCSV, formatPDF, formatXLSX:
	default:
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}

	if at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return opts, fmt.Errorf("invalid -at: %w", err)
		}
		opts.at = parsed
	}
	if (opts.format == formatPDF || opts.format == formatXLSX) && opts.out == "" {
		opts.out = defaultFileName(opts.building, opts.at, opts.format)
	}
	return opts, nil
}

// defaultFileName derives a name such as free-rooms-litrv-2024-03-04-0905.pdf.
func defaultFileName(building string, at time.Time, ext string) string {
	return slug.Make(fmt.Sprintf("free rooms %s %s", building, at.Format("2006-01-02 1504"))) + "." + ext
}

func (a *app) in(ctx context.Context, opts inOptions, stdout, stderr io.Writer) error {
	status := stdout
	if opts.format != formatText {
		status = stderr
	}
	fmt.Fprintf(status, "Getting a room in %s...\n", opts.building)

	rooms, err := a.availability().FindAvailableRooms(ctx, opts.building, opts.at)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return writeRooms(stdout, opts, rooms)
	}
	if err := saveRooms(createFile, opts, rooms); err != nil {
		return err
	}
	fmt.Fprintf(status, "Wrote %s\n", opts.out)
	return nil
}

type createFunc func(name string) (io.WriteCloser, error)

func createFile(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// saveRooms writes to opts.out. A failed close is an error: the data may not
// have reached the disk.
func saveRooms(create createFunc, opts inOptions, rooms []models.RoomAvailability) error {
	f, err := create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeRooms(f, opts, rooms); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeRooms(w io.Writer, opts inOptions, rooms []models.RoomAvailability) error {
	switch opts.format {
	case formatCSV:
		return service.WriteAvailabilityCSV(w, rooms)
	case formatPDF:
		return service.WriteAvailabilityPDF(w, opts.building, opts.at, rooms)
	case formatXLSX:
		return service.WriteAvailabilityXLSX(w, opts.building, rooms)
	default:
		return service.WriteAvailabilityText(w, rooms)
	}
}
