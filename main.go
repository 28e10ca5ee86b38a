package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"yashubustudio/goenrich/enrichment"
)

const (
	fyneAppID  = "studio.yashubu.goenrich"
	runTimeout = 15 * time.Minute
)

func main() {
	fyneApp := app.NewWithID(fyneAppID)
	win := fyneApp.NewWindow("GO Enrichment (MyGene.info + DAVID)")
	win.Resize(fyne.NewSize(1180, 760))

	cfg, err := enrichment.LoadConfig("")
	if err != nil {
		showFatalError(win, fmt.Errorf("failed to load config: %w", err))
		return
	}

	loggerBinding := binding.NewString()
	capture := newLogCapture(loggerBinding, 300)
	logger, err := enrichment.NewLogger(cfg.LogLevel, capture)
	if err != nil {
		showFatalError(win, err)
		return
	}
	defer func() { _ = logger.Sync() }()

	service, err := enrichment.NewDefaultService(cfg, logger)
	if err != nil {
		showFatalError(win, fmt.Errorf("failed to initialise service: %w", err))
		return
	}

	cfgMu := sync.Mutex{}
	saveConfig := func() {
		cfgMu.Lock()
		defer cfgMu.Unlock()
		if err := enrichment.SaveConfig("", cfg); err != nil {
			logger.Warn("failed to save config", zap.Error(err))
		}
	}
	defer saveConfig()

	var (
		inputPath string
		choices   []columnChoice
	)

	fileLabel := widget.NewLabel("No file selected")
	statusLabel := widget.NewLabel("Ready")
	statusLabel.Wrapping = fyne.TextWrapWord

	columnSelect := widget.NewSelect(nil, func(label string) {
		cfgMu.Lock()
		cfg.LastColumn = columnForLabel(choices, label)
		cfgMu.Unlock()
	})
	columnSelect.PlaceHolder = "Gene column"
	columnSelect.Disable()

	speciesSelect := widget.NewSelect(enrichment.OrganismLabels(), func(label string) {
		cfgMu.Lock()
		cfg.LastOrganism = label
		cfgMu.Unlock()
	})
	speciesSelect.SetSelected(initialSpecies(cfg.LastOrganism))

	emailEntry := widget.NewEntry()
	emailEntry.SetPlaceHolder("Email registered with DAVID")

	loadInput := func(path string) {
		meta, err := enrichment.ReadInputFileMetadata(path)
		if err != nil {
			showTitledError(win, "Input Error", err)
			return
		}
		inputPath = path
		fileLabel.SetText(filepath.Base(path))
		choices = buildColumnChoices(meta)
		if len(choices) == 0 {
			columnSelect.Options = nil
			columnSelect.ClearSelected()
			columnSelect.Disable()
			logger.Info("plain text gene list selected", zap.String("file", filepath.Base(path)), zap.String("encoding", meta.Encoding))
			return
		}
		columnSelect.Options = columnLabels(choices)
		columnSelect.Enable()
		cfgMu.Lock()
		preferred := cfg.LastColumn
		cfgMu.Unlock()
		label := labelForColumn(choices, preferred)
		if label == "" {
			label = labelForColumn(choices, meta.Suggested)
		}
		if label != "" {
			columnSelect.SetSelected(label)
		}
		columnSelect.Refresh()
		logger.Info("gene list selected",
			zap.String("file", filepath.Base(path)),
			zap.Int("columns", len(choices)),
			zap.String("suggested", meta.Suggested),
			zap.String("encoding", meta.Encoding))
	}

	browseBtn := widget.NewButton("Browse gene list", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				showTitledError(win, "Input Error", err)
				return
			}
			if rc == nil {
				return
			}
			defer rc.Close()
			loadInput(rc.URI().Path())
		}, win)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".tsv", ".txt"}))
		fd.Show()
	})

	var tableData [][]string
	var tableMu sync.Mutex
	resultTable := widget.NewTable(
		func() (int, int) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if len(tableData) == 0 {
				return 0, 0
			}
			return len(tableData), len(tableData[0])
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if len(tableData) == 0 || id.Row >= len(tableData) || id.Col >= len(tableData[id.Row]) {
				return
			}
			label := obj.(*widget.Label)
			label.Truncation = fyne.TextTruncateEllipsis
			label.SetText(tableData[id.Row][id.Col])
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				label.TextStyle = fyne.TextStyle{}
			}
		},
	)
	resultTable.OnSelected = func(id widget.TableCellID) {
		tableMu.Lock()
		defer tableMu.Unlock()
		if id.Row <= 0 || id.Row >= len(tableData) {
			return
		}
		row := tableData[id.Row]
		var b strings.Builder
		for i, col := range tableData[0] {
			fmt.Fprintf(&b, "%s: %s\n", col, row[i])
		}
		dialog.ShowInformation("Term", b.String(), win)
	}

	updateTable := func(records []enrichment.Record) {
		data := buildTableData(records)
		tableMu.Lock()
		tableData = data
		tableMu.Unlock()
		fyne.Do(func() {
			for col := range data[0] {
				resultTable.SetColumnWidth(col, columnWidth(col))
			}
			resultTable.Refresh()
		})
	}

	var runBtn *widget.Button
	runBtn = widget.NewButton("Run GO Analysis", func() {
		email := strings.TrimSpace(emailEntry.Text)
		if err := validateRunInput(inputPath, email); err != nil {
			showTitledError(win, "Input Error", err)
			return
		}
		column := ""
		if len(choices) > 0 {
			column = columnForLabel(choices, columnSelect.Selected)
			if column == "" {
				showTitledError(win, "Input Error", fmt.Errorf("select the column that holds gene identifiers"))
				return
			}
		}
		organism, ok := enrichment.ParseOrganism(speciesSelect.Selected)
		if !ok {
			showTitledError(win, "Input Error", fmt.Errorf("select a species"))
			return
		}
		genes, err := enrichment.ParseGeneListFile(inputPath, column)
		if err != nil {
			showTitledError(win, "Input Error", err)
			return
		}
		if len(genes) == 0 {
			showTitledError(win, "Input Error", fmt.Errorf("the selected column contains no gene identifiers"))
			return
		}
		saveConfig()

		runBtn.Disable()
		statusLabel.SetText("Querying MyGene.info for ENSEMBL IDs...")
		go func(path, column string, genes []string) {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			start := time.Now()
			res, err := service.Run(ctx, genes, organism, email)
			if err != nil {
				title, msg := outcomeMessage(err)
				fyne.Do(func() {
					runBtn.Enable()
					statusLabel.SetText(title)
					dialog.ShowInformation(title, msg, win)
				})
				return
			}
			dir, tablePath := outputPaths(path, column)
			var saveErr error
			if _, err := enrichment.SaveSubmittedIDs(dir, res.IDs); err != nil {
				saveErr = err
			} else if err := enrichment.SaveTable(tablePath, res.Table); err != nil {
				saveErr = err
			}
			if saveErr != nil {
				logger.Error("failed to write results", zap.Error(saveErr))
			} else {
				logger.Info("results written", zap.String("file", tablePath))
			}
			updateTable(res.Table)
			summary := summaryText(res)
			elapsed := time.Since(start)
			fyne.Do(func() {
				runBtn.Enable()
				statusLabel.SetText(fmt.Sprintf("%s (%.1fs)", summary, elapsed.Seconds()))
				if saveErr != nil {
					showTitledError(win, "Save Error", saveErr)
					return
				}
				dialog.ShowInformation("Success", fmt.Sprintf("%s\nSaved as %s", summary, tablePath), win)
			})
		}(inputPath, column, genes)
	})

	logLabel := widget.NewLabelWithData(loggerBinding)
	logLabel.Wrapping = fyne.TextWrapWord
	logContainer := container.NewVScroll(logLabel)
	logContainer.SetMinSize(fyne.NewSize(200, 160))

	form := widget.NewForm(
		widget.NewFormItem("Gene list", container.NewBorder(nil, nil, nil, browseBtn, fileLabel)),
		widget.NewFormItem("Gene column", columnSelect),
		widget.NewFormItem("Species", speciesSelect),
		widget.NewFormItem("Email", emailEntry),
	)

	controls := container.NewVBox(
		widget.NewLabelWithStyle("Input", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		runBtn,
		statusLabel,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		logContainer,
	)

	root := container.NewHSplit(controls, resultTable)
	root.Offset = 0.32
	win.SetContent(root)

	if len(os.Args) > 1 {
		loadInput(os.Args[1])
	}

	win.ShowAndRun()
}

func initialSpecies(last string) string {
	if o, ok := enrichment.ParseOrganism(last); ok {
		for _, c := range enrichment.OrganismChoices() {
			if c.Organism == o {
				return c.Label
			}
		}
	}
	return "Human"
}

func showFatalError(win fyne.Window, err error) {
	content := widget.NewLabel(err.Error())
	win.SetContent(content)
	dialog.ShowError(err, win)
	win.ShowAndRun()
}

func showTitledError(win fyne.Window, title string, err error) {
	if err != nil {
		dialog.ShowInformation(title, err.Error(), win)
	}
}

type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	_ = l.binding.Set(strings.Join(l.lines, "\n"))
	return len(p), nil
}
