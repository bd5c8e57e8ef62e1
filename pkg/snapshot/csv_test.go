// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadRowsSemicolonExport(t *testing.T) {
	path := writeExport(t,
		"Data_Hora;Doc_Cliente;Valor_Venda;Maquinas\n"+
			"26/08/2026 10:00:00;54996923504;40,00;Lavadora 01\n"+
			"26/08/2026 11:00:00;12345678901;25,50;Secadora 02\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["Valor_Venda"] != "40,00" {
		t.Errorf("Valor_Venda = %q, want 40,00", rows[0]["Valor_Venda"])
	}
	if rows[1]["Maquinas"] != "Secadora 02" {
		t.Errorf("Maquinas = %q, want Secadora 02", rows[1]["Maquinas"])
	}
}

func TestReadRowsDirtyExport(t *testing.T) {
	// BOM, IMTString wrapper and comma delimiters in one file.
	path := writeExport(t,
		"\ufeffIMTString(120): Data_Hora,Doc_Cliente,Valor_Venda\n"+
			"26/08/2026 10:00:00,54996923504,\"40,00\"\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["Data_Hora"] != "26/08/2026 10:00:00" {
		t.Errorf("Data_Hora = %q, header not cleaned", rows[0]["Data_Hora"])
	}
	if rows[0]["Valor_Venda"] != "40,00" {
		t.Errorf("Valor_Venda = %q, want 40,00", rows[0]["Valor_Venda"])
	}
}

func TestReadRowsRaggedRecord(t *testing.T) {
	path := writeExport(t,
		"Data_Hora;Doc_Cliente;Valor_Venda\n"+
			"26/08/2026 10:00:00;54996923504\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if _, ok := rows[0]["Valor_Venda"]; ok {
		t.Error("short record grew a value for a missing column")
	}
}

func TestReadRowsHeaderOnly(t *testing.T) {
	path := writeExport(t, "Data_Hora;Doc_Cliente;Valor_Venda\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	if _, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestDetectDelimiter(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want rune
	}{
		{name: "semicolons win", text: "a;b;c\n1;2;3", want: ';'},
		{name: "commas win", text: "a,b,c\n1,2,3", want: ','},
		{name: "semicolons despite comma decimals in header", text: "a;b,c;d\n", want: ';'},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectDelimiter(tc.text); got != tc.want {
				t.Errorf("DetectDelimiter = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCSVSourceLoad(t *testing.T) {
	path := writeExport(t,
		"Data_Hora;Doc_Cliente;Valor_Venda;Maquinas\n"+
			"26/08/2026 10:00:00;54996923504;40,00;Lavadora 01\n")

	snap, err := NewCSVSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Rows) != 1 {
		t.Errorf("snapshot rows = %d, want 1", len(snap.Rows))
	}
}
