// PlaqueMS - Carotid Plaque Proteomics Analytics and Prediction
// Copyright 2026 Nikolaos Samperis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NikolaosSamperis/plaquems

package ingest

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ===================================================================================================
// Canonicalization Tests
// ===================================================================================================

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "OSTP", "OSTP"},
		{"lowercase", "ostp", "OSTP"},
		{"surrounding whitespace", "  fhl2\t", "FHL2"},
		{"surrounding quotes", `"CFAD"`, "CFAD"},
		{"single quotes", "'proz'", "PROZ"},
		{"utf8 bom", "\uFEFFHRG", "HRG"},
		{"bom quotes and spaces", "\uFEFF \"vapb\" ", "VAPB"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.input)
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// Canonicalization must be idempotent.
			if again := Canonicalize(got); again != got {
				t.Errorf("Canonicalize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// ===================================================================================================
// Locale Cleaning Tests
// ===================================================================================================

func TestCleanNumericColumn(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "american thousands",
			input: []string{"1,234.56", "12", "999,000"},
			want:  []string{"1234.56", "12", "999000"},
		},
		{
			name:  "european thousands",
			input: []string{"1.234,56", "12", "999.000"},
			want:  []string{"1234.56", "12", "999000"},
		},
		{
			name:  "plain floats untouched",
			input: []string{"1234.56", "8.0"},
			want:  []string{"1234.56", "8.0"},
		},
		{
			name:  "mixed formats untouched",
			input: []string{"1,234.56", "not a number"},
			want:  []string{"1,234.56", "not a number"},
		},
		{
			name:  "blanks preserved",
			input: []string{"1,234.56", "", "2,000"},
			want:  []string{"1234.56", "", "2000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanNumericColumn(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("value[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLocaleRoundTrip(t *testing.T) {
	// American and European renderings of the same quantity must clean to
	// the identical float.
	amer := cleanNumericColumn([]string{"1,234.56"})
	euro := cleanNumericColumn([]string{"1.234,56"})

	av, ok := parseCell(amer[0])
	if !ok {
		t.Fatalf("american value %q did not parse", amer[0])
	}
	ev, ok := parseCell(euro[0])
	if !ok {
		t.Fatalf("european value %q did not parse", euro[0])
	}
	if av != 1234.56 || ev != 1234.56 {
		t.Errorf("round trip: american=%v european=%v, want 1234.56 exactly", av, ev)
	}
}

// ===================================================================================================
// Layout Cascade Tests
// ===================================================================================================

func TestRead_TwoColumnHeaderless(t *testing.T) {
	data := []byte("OSTP,12.5\nFHL2,8.0\nCFAD,3.25\n")

	tbl, err := Read(data, "sample.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Long {
		t.Fatalf("layout = %q, want %q", tbl.Layout, Long)
	}
	if len(tbl.Subjects) != 1 || tbl.Subjects[0] != "Subject_1" {
		t.Errorf("subjects = %v, want [Subject_1]", tbl.Subjects)
	}
	if len(tbl.Proteins) != 3 {
		t.Fatalf("proteins = %v, want 3 entries", tbl.Proteins)
	}
	if tbl.Proteins[0] != "OSTP" || tbl.Values[0][0] != 12.5 {
		t.Errorf("first row = %s %v, want OSTP 12.5", tbl.Proteins[0], tbl.Values[0][0])
	}
}

func TestRead_TwoColumnWithHeader(t *testing.T) {
	data := []byte("Protein,Abundance\nOSTP,12.5\nFHL2,8.0\n")

	tbl, err := Read(data, "sample.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Long {
		t.Fatalf("layout = %q, want %q", tbl.Layout, Long)
	}
	if len(tbl.Proteins) != 2 {
		t.Fatalf("proteins = %v, header row must not be data", tbl.Proteins)
	}
	if tbl.Proteins[0] != "OSTP" {
		t.Errorf("first protein = %q, want OSTP", tbl.Proteins[0])
	}
}

func TestRead_WideMatrix(t *testing.T) {
	data := []byte("Protein\tP1\tP2\nOSTP\t1.5\t2.5\nFHL2\t3.5\t\n")

	tbl, err := Read(data, "matrix.tsv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Wide {
		t.Fatalf("layout = %q, want %q", tbl.Layout, Wide)
	}
	if len(tbl.Subjects) != 2 || tbl.Subjects[0] != "P1" || tbl.Subjects[1] != "P2" {
		t.Fatalf("subjects = %v, want [P1 P2]", tbl.Subjects)
	}
	row, ok := tbl.Row("FHL2")
	if !ok {
		t.Fatal("FHL2 row not found")
	}
	if row[0] != 3.5 {
		t.Errorf("FHL2/P1 = %v, want 3.5", row[0])
	}
	if !math.IsNaN(row[1]) {
		t.Errorf("FHL2/P2 = %v, want NaN for blank cell", row[1])
	}
}

func TestRead_IntegerHeaderReparsedHeaderless(t *testing.T) {
	// A matrix whose header row is all integers is really headerless data;
	// subjects become synthetic identifiers "1","2",...
	data := []byte("id,1,2\nOSTP,1.5,2.5\nFHL2,3.5,4.5\n")

	tbl, err := Read(data, "matrix.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Wide {
		t.Fatalf("layout = %q, want %q", tbl.Layout, Wide)
	}
	if tbl.Subjects[0] != "1" || tbl.Subjects[1] != "2" {
		t.Errorf("subjects = %v, want synthetic [1 2]", tbl.Subjects)
	}
	if len(tbl.Proteins) != 3 {
		t.Errorf("proteins = %v, want header row re-read as data", tbl.Proteins)
	}
}

func TestRead_AnonymousColumnsRenamed(t *testing.T) {
	data := []byte("Protein,Unnamed: 1,P2\nOSTP,1.5,2.5\nFHL2,3.5,4.5\n")

	tbl, err := Read(data, "matrix.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Subjects[0] != "Subject_1" {
		t.Errorf("subjects = %v, want anonymous column renamed Subject_1", tbl.Subjects)
	}
	if tbl.Subjects[1] != "P2" {
		t.Errorf("subjects = %v, named column must keep its label", tbl.Subjects)
	}
}

func TestRead_EmptyColumnsDropped(t *testing.T) {
	data := []byte("Protein,P1,P2\nOSTP,1.5,\nFHL2,3.5,\n")

	tbl, err := Read(data, "matrix.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(tbl.Subjects) != 1 || tbl.Subjects[0] != "P1" {
		t.Errorf("subjects = %v, want all-empty P2 dropped", tbl.Subjects)
	}
}

func TestRead_SingleProteinIsLong(t *testing.T) {
	data := []byte("Protein,P1,P2\nOSTP,1.5,2.5\n")

	tbl, err := Read(data, "matrix.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Long {
		t.Errorf("layout = %q, want %q for a single distinct protein", tbl.Layout, Long)
	}
}

// ===================================================================================================
// Separator Handling Tests
// ===================================================================================================

func TestRead_SeparatorInference(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"tabs win", "Protein\tA\tB\nOSTP\t1\t2\nFHL2\t3\t4"},
		{"commas win", "Protein,A,B\nOSTP,1,2\nFHL2,3,4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read([]byte(tt.data), "upload.dat")
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(tbl.Subjects) != 2 {
				t.Errorf("subjects = %v, want 2 columns detected", tbl.Subjects)
			}
		})
	}
}

func TestRead_ConsecutiveSeparatorsFatal(t *testing.T) {
	data := []byte("Protein,P1\nOSTP,,1.5\n")

	_, err := Read(data, "bad.csv")
	if err == nil {
		t.Fatal("Read() expected error for consecutive separators")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name the offending line", err)
	}
}

func TestRead_TrailingSeparatorsTrimmed(t *testing.T) {
	// Spreadsheet exports often terminate lines with stray delimiters;
	// those must not read as consecutive-separator corruption.
	data := []byte("Protein,P1,\nOSTP,1.5,\nFHL2,2.5,\n")

	tbl, err := Read(data, "export.csv")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(tbl.Subjects) != 1 {
		t.Errorf("subjects = %v, want single data column", tbl.Subjects)
	}
}

func TestRead_UnconvertibleColumnFatal(t *testing.T) {
	data := []byte("Protein,P1\nOSTP,high\nFHL2,2.5\n")

	_, err := Read(data, "bad.csv")
	if err == nil {
		t.Fatal("Read() expected error for non-numeric column")
	}
	if !strings.Contains(err.Error(), "P1") {
		t.Errorf("error %q should name the offending column", err)
	}
}

// ===================================================================================================
// Spreadsheet Tests
// ===================================================================================================

func writeSheet(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestRead_SpreadsheetWide(t *testing.T) {
	data := writeSheet(t, [][]interface{}{
		{"Protein", "P1", "P2"},
		{"ostp", 1.5, 2.5},
		{"fhl2", 3.5, 4.5},
	})

	tbl, err := Read(data, "upload.xlsx")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Layout != Wide {
		t.Fatalf("layout = %q, want %q", tbl.Layout, Wide)
	}
	row, ok := tbl.Row("OSTP")
	if !ok {
		t.Fatal("OSTP not found; index must be canonicalized")
	}
	if row[0] != 1.5 || row[1] != 2.5 {
		t.Errorf("OSTP row = %v, want [1.5 2.5]", row)
	}
}

func TestRead_SpreadsheetEuropeanLocale(t *testing.T) {
	data := writeSheet(t, [][]interface{}{
		{"Protein", "P1"},
		{"OSTP", "1.234,56"},
		{"FHL2", "2.000,5"},
	})

	tbl, err := Read(data, "upload.xlsx")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	row, _ := tbl.Row("OSTP")
	if row[0] != 1234.56 {
		t.Errorf("OSTP = %v, want 1234.56 after locale cleaning", row[0])
	}
}

func TestRead_SpreadsheetUnconvertible(t *testing.T) {
	data := writeSheet(t, [][]interface{}{
		{"Protein", "P1", "P2"},
		{"OSTP", 1.5, "n/a"},
		{"FHL2", 2.5, "none"},
	})

	_, err := Read(data, "upload.xlsx")
	if err == nil {
		t.Fatal("Read() expected error for unconvertible spreadsheet column")
	}
	if !strings.Contains(err.Error(), "P2") {
		t.Errorf("error %q should name the offending column", err)
	}
}
