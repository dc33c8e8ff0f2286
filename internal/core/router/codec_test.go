package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleEncode_TokyoStation(t *testing.T) {
	fn := HandleEncode()

	cases := []struct {
		level string
		want  string
	}{
		{"first", "5339"},
		{"second", "533946"},
		{"third", "53394611"},
		{"fourth-half", "533946113"},
		{"fifth", "5339461173"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet,
			"/encode?lat=35.6812&lon=139.7671&level="+tc.level, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", tc.level, rr.Code, rr.Body.String())
		}
		var resp encodeResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.level, err)
		}
		if resp.Code != tc.want {
			t.Fatalf("%s: code=%q, want %q", tc.level, resp.Code, tc.want)
		}
	}
}

func TestHandleEncode_DefaultsToThird(t *testing.T) {
	fn := HandleEncode()
	rr := httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, "/encode?lat=35.6812&lon=139.7671", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var resp encodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "53394611" || resp.Level != "third" {
		t.Fatalf("got %+v", resp)
	}
}

func TestHandleEncode_Rejects(t *testing.T) {
	fn := HandleEncode()
	for _, q := range []string{
		"lat=abc&lon=139.7671",
		"lat=35.68&lon=oops",
		"lat=10.0&lon=139.7671",  // south of the covered extent
		"lat=35.68&lon=160.0",    // east of the covered extent
		"lat=35.68&lon=139.7671&level=tenth",
	} {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet, "/encode?"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d, want 400", q, rr.Code)
		}
	}
}

func TestHandleDecode_ExpandsCode(t *testing.T) {
	fn := HandleDecode()
	rr := httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, "/decode?code=53394611", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Level != "third" || resp.Parent != "533946" {
		t.Fatalf("got %+v", resp)
	}
	if len(resp.Children) != 4 {
		t.Fatalf("children=%d, want 4 half cells", len(resp.Children))
	}
	if len(resp.Neighbors) != 8 {
		t.Fatalf("neighbors=%d, want 8", len(resp.Neighbors))
	}
}

func TestHandleDecode_LevelHintPinsTenDigitReading(t *testing.T) {
	fn := HandleDecode()

	rr := httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, "/decode?code=5339461111", nil))
	var quarter decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &quarter); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quarter.Level != "fourth-quarter" {
		t.Fatalf("unhinted level=%q, want fourth-quarter", quarter.Level)
	}

	rr = httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, "/decode?code=5339461111&level=fifth", nil))
	var fifth decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &fifth); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fifth.Level != "fifth" {
		t.Fatalf("hinted level=%q, want fifth", fifth.Level)
	}
}

func TestHandleDecode_Rejects(t *testing.T) {
	fn := HandleDecode()
	for _, q := range []string{
		"",                      // missing code
		"code=12345",            // bad length
		"code=5339468x",         // bad digit
		"code=53394611&level=tenth",
	} {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet, "/decode?"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%q: status=%d, want 400", q, rr.Code)
		}
	}
}
