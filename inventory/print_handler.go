package inventory

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"picklist/aggregation"
	"picklist/cache"
	"picklist/export"
	"picklist/logger"
	"picklist/render"
)

// PDFPrinter turns a page into a PDF. automation.Printer implements it.
type PDFPrinter interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}

// PrintPage renders the print layout of the view selected by q.
func PrintPage(store *cache.Store, q url.Values) (string, error) {
	v, err := Select(store.Items(), q)
	if err != nil {
		return "", err
	}
	return render.RenderPrintPageHTML(v.Title, v.Items, aggregation.Summarize(v.Items), time.Now())
}

// PrintPageHandler serves the print layout for the browser's own print dialog.
func PrintPageHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := PrintPage(store, r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}
}

// PrintPDFHandler returns the print layout as a PDF.
func PrintPDFHandler(store *cache.Store, printer PDFPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := PrintPage(store, r.URL.Query())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		pdf, err := printer.PrintHTML(r.Context(), page)
		if err != nil {
			logger.FromContext(r.Context()).Error("PDF print failed", zap.Error(err))
			writeJSONError(w, "Failed to print PDF: "+err.Error(), http.StatusInternalServerError)
			return
		}

		filename := export.FileName("picklist", time.Now(), "pdf")
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(pdf)
	}
}
