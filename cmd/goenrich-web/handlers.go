package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"yashubustudio/goenrich/enrichment"
)

// Pipeline is the part of enrichment.Service the handlers need.
type Pipeline interface {
	Run(ctx context.Context, raw []string, organism enrichment.Organism, credential string) (enrichment.Result, error)
}

type columnsResponse struct {
	Columns   []string `json:"columns"`
	Samples   []string `json:"samples"`
	Suggested string   `json:"suggested"`
	Encoding  string   `json:"encoding"`
}

type organismResponse struct {
	Label    string `json:"label"`
	Organism string `json:"organism"`
}

type indexPage struct {
	Organisms []enrichment.OrganismChoice
	Default   string
}

func IndexHandler(tmpl *template.Template) echo.HandlerFunc {
	return func(c echo.Context) error {
		var buf bytes.Buffer
		page := indexPage{Organisms: enrichment.OrganismChoices(), Default: "Human"}
		if err := tmpl.Execute(&buf, page); err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	}
}

func OrganismsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		choices := enrichment.OrganismChoices()
		out := make([]organismResponse, 0, len(choices))
		for _, ch := range choices {
			out = append(out, organismResponse{Label: ch.Label, Organism: string(ch.Organism)})
		}
		return c.JSON(http.StatusOK, out)
	}
}

// ColumnsHandler reports the header of an uploaded CSV/TSV file.
func ColumnsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		data, name, err := readUpload(c)
		if err != nil {
			return err
		}
		meta, err := enrichment.InspectInput(data, name)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, columnsResponse{
			Columns:   nonNil(meta.Columns),
			Samples:   nonNil(meta.Samples),
			Suggested: meta.Suggested,
			Encoding:  meta.Encoding,
		})
	}
}

// AnalyzeHandler runs the pipeline for an uploaded gene list and returns the
// result table as a CSV download, or as JSON when the client asks for it.
func AnalyzeHandler(pipeline Pipeline, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, name, err := readUpload(c)
		if err != nil {
			return err
		}
		column := strings.TrimSpace(c.FormValue("column"))
		genes, err := enrichment.ParseGeneList(data, name, column)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if len(genes) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "the uploaded file contains no gene identifiers")
		}
		organism, ok := enrichment.ParseOrganism(c.FormValue("species"))
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "species is required")
		}
		if column == "" {
			if meta, err := enrichment.InspectInput(data, name); err == nil {
				column = meta.Suggested
			}
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()
		res, err := pipeline.Run(ctx, genes, organism, strings.TrimSpace(c.FormValue("email")))
		if err != nil {
			return outcomeError(err)
		}

		h := c.Response().Header()
		h.Set("X-Run-Id", res.RunID)
		h.Set("X-Matched-Scope", string(res.Scope))
		h.Set("X-Resolved-Ids", strconv.Itoa(len(res.IDs)))
		h.Set("X-Unresolved-Ids", strconv.Itoa(len(res.Unresolved)))
		if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
			return c.JSON(http.StatusOK, res)
		}
		var buf bytes.Buffer
		if err := enrichment.WriteTable(&buf, res.Table); err != nil {
			return err
		}
		h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", enrichment.ResultFileName(column)))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

// outcomeError maps pipeline failures onto HTTP statuses.
func outcomeError(err error) error {
	var authErr *enrichment.AuthError
	var subErr *enrichment.SubmissionError
	switch {
	case errors.Is(err, enrichment.ErrResolutionEmpty):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no valid ENSEMBL IDs were found for the selected species").SetInternal(err)
	case errors.As(err, &authErr):
		return echo.NewHTTPError(http.StatusUnauthorized, "DAVID authentication failed; check the registered email address").SetInternal(err)
	case errors.As(err, &subErr):
		return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("DAVID %s failed", subErr.Step)).SetInternal(err)
	default:
		return err
	}
}

func readUpload(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "a gene list file is required").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
