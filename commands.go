package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picklist/automation"
	"picklist/export"
	"picklist/inventory"
	"picklist/mappers"
	"picklist/model"
)

// viewFlags are the list filters shared by export and print.
type viewFlags struct {
	group     string
	locations string
	search    string
	remaining bool
	fresh     bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.group, "group", "", "location group (A1-A6, A7-A12, B-AG)")
	cmd.Flags().StringVar(&f.locations, "locations", "", "comma separated base locations, e.g. A1,B5,AG")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "search term")
	cmd.Flags().BoolVar(&f.remaining, "remaining", false, "only unchecked rows")
	cmd.Flags().BoolVar(&f.fresh, "fresh", false, "reload from the backend instead of using the local snapshot")
}

func (f *viewFlags) values() url.Values {
	q := url.Values{}
	if f.group != "" {
		q.Set("group", f.group)
	}
	if f.locations != "" {
		q.Set("locations", f.locations)
	}
	if f.search != "" {
		q.Set("q", f.search)
	}
	if f.remaining {
		q.Set("remaining", "true")
	}
	return q
}

func (f *viewFlags) load(ctx context.Context, a *app) error {
	if f.fresh {
		return a.store.Reload(ctx)
	}
	return a.store.Open(ctx)
}

func exportCmd(cfgPath *string) *cobra.Command {
	var (
		vf     viewFlags
		format string
		layout string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the notes summary to a .xlsx or .csv file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := vf.load(cmd.Context(), a); err != nil {
				return err
			}
			v, err := inventory.Select(a.store.Items(), vf.values())
			if err != nil {
				return err
			}
			views := mappers.ToNoteViews(v.Items)
			if len(views) == 0 {
				return export.ErrNoNotes
			}

			if layout == "" {
				layout = a.cfg.Export.Layout
			}
			if out == "" {
				prefix := "inventory-notes"
				if v.Narrowed {
					prefix = "notes-summary"
				}
				out = export.FileName(prefix, time.Now(), f)
			}

			if err := writeNotesFile(out, views, f, export.ParseLayout(layout)); err != nil {
				return err
			}
			a.log.Info("notes exported", zap.String("file", out), zap.Int("notes", len(views)))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d notes to %s\n", len(views), out)
			return nil
		},
	}
	vf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatXLSX, "xlsx or csv")
	cmd.Flags().StringVar(&layout, "layout", "", "column order: vfid or location (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default inventory-notes-YYYY-MM-DD.<format>)")
	return cmd
}

// writeNotesFile writes the notes to path and removes the file again when
// the write does not complete.
func writeNotesFile(path string, views []model.NoteView, format string, layout export.Layout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteNotes(file, views, format, layout); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func pingCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			msg, err := a.backend.Ping(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s backend: %w", a.backend.Name(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func printCmd(cfgPath *string) *cobra.Command {
	var (
		vf  viewFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the picklist to PDF with a headless browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := vf.load(cmd.Context(), a); err != nil {
				return err
			}
			page, err := inventory.PrintPage(a.store, vf.values())
			if err != nil {
				return err
			}
			pdf, err := automation.NewPrinter(a.cfg.App.BrowserBin, a.log).PrintHTML(cmd.Context(), page)
			if err != nil {
				return err
			}

			if out == "" {
				out = export.FileName("picklist", time.Now(), "pdf")
			}
			if err := os.WriteFile(out, pdf, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	vf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default picklist-YYYY-MM-DD.pdf)")
	return cmd
}
