package deps

import (
	"reflect"
	"testing"
)

func TestResolveImportsMapsAndOrders(t *testing.T) {
	r, err := NewResolver(Builtin())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	imports := []string{
		"XINPUT1_3.dll",
		"d3d11.dll",
		"dxgi.dll", // same component as d3d11.dll
		"winhttp.dll",
		"someprivatelib.dll",
	}
	report := r.ResolveImports("/tmp/game.exe", imports)

	var ids []string
	for _, comp := range report.Resolved {
		ids = append(ids, comp.ID)
	}
	want := []string{"dxvk", "winhttp", "xinput"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("resolved ids = %v, want %v", ids, want)
	}

	if got := report.Unresolved; !reflect.DeepEqual(got, []string{"someprivatelib.dll"}) {
		t.Fatalf("unresolved = %v", got)
	}
}

func TestResolveImportsIsDeterministic(t *testing.T) {
	r, err := NewResolver(Builtin())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	a := r.ResolveImports("x", []string{"d3d11.dll", "xinput1_3.dll", "msvcp140.dll"})
	b := r.ResolveImports("x", []string{"msvcp140.dll", "xinput1_3.dll", "d3d11.dll"})

	if !reflect.DeepEqual(a.Resolved, b.Resolved) {
		t.Fatalf("install order depends on import order: %v vs %v", a.Resolved, b.Resolved)
	}
}

func TestMustInstallExcludesBaseRuntime(t *testing.T) {
	r, err := NewResolver(Builtin())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	report := r.ResolveImports("x", []string{"winhttp.dll", "wininet.dll", "d3d11.dll"})
	install := MustInstall(report.Resolved)
	if len(install) != 1 || install[0].ID != "dxvk" {
		t.Fatalf("MustInstall = %v, want [dxvk]", install)
	}

	// Base-runtime components are still reported.
	if len(report.Resolved) != 3 {
		t.Fatalf("resolved = %v, want 3 components", report.Resolved)
	}
}

func TestScanMissingBinary(t *testing.T) {
	r, err := NewResolver(Builtin())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if _, err := r.Scan("/nonexistent/app.exe"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
