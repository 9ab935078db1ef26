package poster

import (
	"testing"

	"github.com/viant/movierec/config"
)

func TestBadgerStore(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerStore failed: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("Heat"); err != nil || ok {
		t.Fatalf("Get on empty store = (%v, %v)", ok, err)
	}
	if err := store.Put("Heat", Entry{URL: "heat.jpg", Found: true}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put("Gone", Entry{}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	e, ok, err := store.Get("Heat")
	if err != nil || !ok || e.URL != "heat.jpg" || !e.Found {
		t.Fatalf("Get(Heat) = (%+v, %v, %v)", e, ok, err)
	}
	e, ok, err = store.Get("Gone")
	if err != nil || !ok || e.Found {
		t.Fatalf("Get(Gone) = (%+v, %v, %v)", e, ok, err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default().Poster
	cfg.Enabled = false
	f, closer, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if _, ok := f.(Nop); !ok {
		t.Fatalf("disabled posters gave %T, want Nop", f)
	}
	_ = closer.Close()

	cfg.Enabled = true
	cfg.CacheDir = t.TempDir()
	f, closer, err = NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	defer closer.Close()
	if _, ok := f.(*Client); !ok {
		t.Fatalf("enabled posters gave %T, want *Client", f)
	}
}
