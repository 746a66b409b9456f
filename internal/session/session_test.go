package session

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/table"
	"github.com/KaramelBytes/tabula-cli/internal/transform"
)

func numbers(t *testing.T, n int) *table.Table {
	t.Helper()
	rows := make([]table.Row, n)
	for i := range rows {
		v := table.Number(float64(i))
		if i%4 == 0 {
			v = table.Absent()
		}
		rows[i] = table.Row{"x": v}
	}
	tb, err := table.New("nums", []string{"x"}, rows)
	if err != nil {
		t.Fatal(err)
	}
	return tb
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s := New(numbers(t, 200), nil)
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.View(func(tb *table.Table) error {
				_, err := analysis.Describe(tb, "x")
				return err
			})
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- s.Update(func(tb *table.Table) error {
			_, err := transform.Impute(tb, "x", transform.StrategyMean)
			return err
		})
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	err := s.View(func(tb *table.Table) error {
		for i := 0; i < tb.Len(); i++ {
			if tb.Value(i, "x").IsAbsent() {
				t.Errorf("row %d still absent", i)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestUpdateLogsMutations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(numbers(t, 8), logger)
	err := s.Update(func(tb *table.Table) error {
		_, err := transform.Impute(tb, "x", transform.StrategyDrop)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"msg=mutation", "op=impute", "table=nums", "msg=\"row count changed\"", "to=6"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestUpdateErrorAndSnapshot(t *testing.T) {
	s := New(numbers(t, 4), nil)
	boom := errors.New("boom")
	if err := s.Update(func(*table.Table) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	snap := s.Snapshot()
	if err := s.Update(func(tb *table.Table) error { return tb.SetValue(1, "x", table.Number(99)) }); err != nil {
		t.Fatal(err)
	}
	if snap.Value(1, "x").Raw() != 1 {
		t.Fatal("snapshot shares rows with the session")
	}
	if err := s.Replace(nil); err == nil {
		t.Fatal("nil replace accepted")
	}
	if err := s.Replace(numbers(t, 2)); err != nil {
		t.Fatal(err)
	}
	_ = s.View(func(tb *table.Table) error {
		if tb.Len() != 2 {
			t.Errorf("len = %d", tb.Len())
		}
		return nil
	})
}
