package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor("/")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestFromContext_Caps(t *testing.T) {
	p := paramsFor("/?limit=9999&offset=30")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 30 {
		t.Errorf("expected offset 30, got %d", p.Offset)
	}
}

func TestWindow(t *testing.T) {
	p := Params{Limit: 10, Offset: 95}
	start, end := p.Window(100)
	if start != 95 || end != 100 {
		t.Errorf("expected [95,100), got [%d,%d)", start, end)
	}

	start, end = p.Window(50)
	if start != 50 || end != 50 {
		t.Errorf("expected empty window, got [%d,%d)", start, end)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 100, 10, 0)
	if !r.HasMore {
		t.Error("expected has_more for first page")
	}
	r = NewResponse(nil, 100, 10, 95)
	if r.HasMore {
		t.Error("expected no more results past the end")
	}
}
