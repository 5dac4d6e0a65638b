package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/tillbook-backend/pkg/errors"
)

type testLine struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

type testBody struct {
	Policy string     `json:"policy" validate:"omitempty,oneof=lowest_price contract_first"`
	Lines  []testLine `json:"lines" validate:"required,min=1,dive"`
}

func decode(t *testing.T, body string) (testBody, error) {
	t.Helper()
	var dest testBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
	return dest, err
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	body, err := decode(t, `{"policy":"contract_first","lines":[{"productId":1,"quantity":2}]}`)
	if err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if body.Policy != "contract_first" || len(body.Lines) != 1 || body.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	_, err := decode(t, `{"policy":"cheapest","lines":[{"productId":1,"quantity":2},{"productId":3,"quantity":0}]}`)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["lines[1].quantity"] != "is required" {
		t.Fatalf("expected nested quantity error, got %v", details)
	}
	if details["policy"] != "must be one of lowest_price, contract_first" {
		t.Fatalf("expected policy error, got %v", details)
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"syntax":   `{"lines":`,
		"unknown":  `{"lines":[{"productId":1,"quantity":1}],"discount":5}`,
		"trailing": `{"lines":[{"productId":1,"quantity":1}]}{}`,
		"empty":    `{"lines":[]}`,
		"negative": `{"lines":[{"productId":-1,"quantity":1}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decode(t, body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
