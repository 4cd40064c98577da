package symbols

import (
	"context"
	"errors"
	"testing"
)

func TestFirstAvailableSkipsUnsupported(t *testing.T) {
	first := &stubSource{err: ErrUnsupported}
	second := &stubSource{res: Result{Flat: []Information{{Name: "f", Kind: KindFunction}}}}
	third := &stubSource{}

	res, err := FirstAvailable(first, nil, second, third).DocumentSymbols(context.Background(), "a.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Flat) != 1 || res.Flat[0].Name != "f" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if third.calls != 0 {
		t.Fatal("sources after the first answer must not be asked")
	}
}

func TestFirstAvailableStopsOnRealError(t *testing.T) {
	boom := errors.New("boom")
	second := &stubSource{}

	_, err := FirstAvailable(&stubSource{err: boom}, second).DocumentSymbols(context.Background(), "a.go")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if second.calls != 0 {
		t.Fatal("a failing source must not fall through")
	}
}

func TestFirstAvailableNoneSupported(t *testing.T) {
	_, err := FirstAvailable(&stubSource{err: ErrUnsupported}).DocumentSymbols(context.Background(), "a.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
