package spreadsheet

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Extractor renders XLSX workbooks as per-sheet CSV text.
type Extractor struct{}

// New creates a new spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		xlsxMIME,
		"application/vnd.ms-excel",
	}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".xlsx", ".xls"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 75
}

// Extract reads shared strings, sheet names, and each worksheet, and
// renders the workbook as CSV blocks with per-sheet markers.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("%q could not be opened as a spreadsheet archive. Legacy .xls files are not supported; re-save the workbook as .xlsx and upload it again.", raw.Name),
			FileName: raw.Name,
			FileType: xlsxMIME,
			Error:    "not a valid XLSX archive",
		}, nil
	}

	shared := parseSharedStrings(reader)
	names := parseSheetNames(reader)

	var (
		sb        strings.Builder
		totalRows int
		sheets    int
	)
	for i, entry := range worksheetEntries(reader) {
		rows := parseWorksheet(entry, shared)
		if len(rows) == 0 {
			continue
		}

		name := fmt.Sprintf("Sheet%d", i+1)
		if i < len(names) {
			name = names[i]
		}

		sb.WriteString(fmt.Sprintf("--- Sheet: %s (%d rows) ---\n", name, len(rows)))
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ","))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		totalRows += len(rows)
		sheets++
	}

	if totalRows == 0 {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("No data rows were found in %q. The workbook may be empty or contain only charts and formatting.", raw.Name),
			FileName: raw.Name,
			FileType: xlsxMIME,
			Error:    "no data rows in workbook",
		}, nil
	}

	content := fmt.Sprintf("Workbook: %s (%d sheets, %d rows)\n\n%s",
		raw.Name, sheets, totalRows, strings.TrimSpace(sb.String()))

	return &domain.ParsedDocument{
		Success:  true,
		Content:  content,
		FileName: raw.Name,
		FileType: xlsxMIME,
	}, nil
}

type sharedStringsXML struct {
	Items []struct {
		Text     []string `xml:"t"`
		RichText []string `xml:"r>t"`
	} `xml:"si"`
}

// parseSharedStrings loads xl/sharedStrings.xml. Rich-text runs inside
// one entry are concatenated.
func parseSharedStrings(reader *zip.Reader) []string {
	data, err := readArchiveFile(reader, "xl/sharedStrings.xml")
	if err != nil {
		return nil
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil
	}

	strs := make([]string, 0, len(sst.Items))
	for _, item := range sst.Items {
		strs = append(strs, strings.Join(item.Text, "")+strings.Join(item.RichText, ""))
	}
	return strs
}

type workbookXML struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
	} `xml:"sheets>sheet"`
}

// parseSheetNames reads display names from xl/workbook.xml, in workbook
// order. They pair with worksheet files by index.
func parseSheetNames(reader *zip.Reader) []string {
	data, err := readArchiveFile(reader, "xl/workbook.xml")
	if err != nil {
		return nil
	}

	var wb workbookXML
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil
	}

	names := make([]string, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
	}
	return names
}

var sheetFileRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// worksheetEntries returns sheet files in numeric order.
func worksheetEntries(reader *zip.Reader) []*zip.File {
	type numbered struct {
		n    int
		file *zip.File
	}
	var entries []numbered
	for _, file := range reader.File {
		m := sheetFileRe.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, numbered{n: n, file: file})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	files := make([]*zip.File, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.file)
	}
	return files
}

type worksheetXML struct {
	Rows []struct {
		Cells []struct {
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline struct {
				Text string `xml:"t"`
			} `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// parseWorksheet renders one sheet's rows. Shared-string cells are
// resolved through the string table, inline strings come from their
// <is> block, and every other cell keeps its raw <v> value. Rows with
// no non-empty cells are dropped.
func parseWorksheet(file *zip.File, shared []string) [][]string {
	rc, err := file.Open()
	if err != nil {
		return nil
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil
	}

	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil
	}

	var rows [][]string
	for _, row := range ws.Rows {
		cells := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			value := cell.Value
			switch cell.Type {
			case "s":
				if idx, err := strconv.Atoi(cell.Value); err == nil && idx >= 0 && idx < len(shared) {
					value = shared[idx]
				}
			case "inlineStr":
				value = cell.Inline.Text
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			cells = append(cells, value)
		}
		if !empty {
			rows = append(rows, cells)
		}
	}
	return rows
}

// readArchiveFile returns the decompressed contents of one archive entry.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry not found: %s", name)
}
