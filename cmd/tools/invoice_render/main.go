package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-invoice/internal/coupon"
	"github.com/noah-isme/backend-invoice/internal/export"
	"github.com/noah-isme/backend-invoice/internal/invoice"
	"github.com/noah-isme/backend-invoice/internal/obs"
)

func main() {
	in := flag.String("in", "-", "draft JSON file, - for stdin")
	out := flag.String("out", "", "write the rendered PDF to this path")
	code := flag.String("coupon", "", "coupon code to apply before rendering")
	codes := flag.String("codes", os.Getenv("COUPON_CODES"), "comma separated CODE=AMOUNT pairs, defaults to the built-in table")
	flag.Parse()

	logger := obs.NewLoggerTo(os.Stderr, "console", "info")
	if err := run(logger, *in, *out, *code, *codes); err != nil {
		logger.Fatal().Err(err).Msg("render invoice")
	}
}

func run(logger zerolog.Logger, in, out, code, codes string) error {
	draft, err := readDraft(in)
	if err != nil {
		return err
	}

	table := coupon.DefaultTable()
	if strings.TrimSpace(codes) != "" {
		if table, err = coupon.ParseTable(strings.Split(codes, ",")); err != nil {
			return err
		}
	}
	svc := &invoice.Service{Resolver: coupon.NewStaticResolver(table), Logger: logger}

	ctx := logger.WithContext(context.Background())
	state := coupon.State{}
	if code != "" {
		if state, err = svc.ApplyCoupon(ctx, state, code); err != nil {
			return err
		}
	}

	preview := export.BuildPreview(draft, svc.Totals(ctx, draft, state))
	for _, line := range preview.Lines() {
		fmt.Println(line)
	}
	if out == "" {
		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	id, err := export.RenderPDF(f, preview, export.PDFOptions{})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	logger.Info().Str("path", out).Str("document_id", id).Msg("invoice_pdf_written")
	return nil
}

func readDraft(path string) (invoice.Draft, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return invoice.Draft{}, err
		}
		defer f.Close()
		r = f
	}
	var d invoice.Draft
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return invoice.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d.Normalize(), nil
}
