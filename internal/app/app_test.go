package app

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/graf262-max/legal-update-monitor/internal/config"
	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func baseConfig() config.Config {
	cfg := config.Load()
	return cfg
}

func statusFor(t *testing.T, a *Application, src domain.Source) SourceStatus {
	t.Helper()
	for _, st := range a.Sources() {
		if st.Source == src {
			return st
		}
	}
	t.Fatalf("no status recorded for %s", src)
	return SourceStatus{}
}

func TestNewSkipsKeyedSourcesWithoutCredentials(t *testing.T) {
	cfg := baseConfig()
	cfg.Collectors.LawGoKr.APIKey = ""
	cfg.Collectors.Assembly.APIKey = ""

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	for _, src := range []domain.Source{domain.SourceLawGoKr, domain.SourceAssembly} {
		st := statusFor(t, a, src)
		if !st.Skipped {
			t.Errorf("%s not marked skipped without a key", src)
		}
		if st.Reason != domain.StatSkipped {
			t.Errorf("%s skip reason = %q", src, st.Reason)
		}
	}

	// keyless boards stay active
	if st := statusFor(t, a, domain.SourcePipc); st.Skipped || !st.Enabled {
		t.Errorf("pipc status = %+v", st)
	}
}

func TestNewHonorsDisabledSources(t *testing.T) {
	cfg := baseConfig()
	cfg.Collectors.Msit.Enabled = false

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	st := statusFor(t, a, domain.SourceMsit)
	if st.Enabled || st.Skipped {
		t.Errorf("disabled source status = %+v", st)
	}
}

func TestNewWiresKeyedSources(t *testing.T) {
	cfg := baseConfig()
	cfg.Collectors.LawGoKr.APIKey = "oc"
	cfg.Collectors.Assembly.APIKey = "key"

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	for _, src := range []domain.Source{domain.SourceLawGoKr, domain.SourceAssembly} {
		if st := statusFor(t, a, src); st.Skipped || !st.Enabled {
			t.Errorf("%s status = %+v, want active", src, st)
		}
	}
	if a.Pipeline() == nil {
		t.Fatal("pipeline not built")
	}
}

func TestNewOpensConfiguredStore(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "briefings.db")

	a, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.store == nil {
		t.Fatal("configured store not opened")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
