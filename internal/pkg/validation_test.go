package pkg

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type bindInput struct {
	NumID   string `json:"numId" form:"numId" binding:"required"`
	Correo  string `json:"correo,omitempty" form:"correo" binding:"omitempty,email"`
	Nombres string `json:"-" form:"nombres" binding:"required,min=2"`
}

func TestFieldErrors_GinBinding(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`correo=bad&nombres=A`))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var in bindInput
	err := c.ShouldBind(&in)
	if err == nil {
		t.Fatal("ShouldBind() should fail")
	}

	got := FieldErrors(err, &in)
	want := map[string]string{
		"numId":   "required",
		"correo":  "email",
		"nombres": "min=2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FieldErrors() = %v; want %v", got, want)
	}
}

func TestFieldErrors_WithoutObject(t *testing.T) {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(struct {
		NumID  string `validate:"required"`
		Correo string `validate:"omitempty,email"`
	}{Correo: "not-an-email"})
	if err == nil {
		t.Fatal("Struct() should fail")
	}

	got := FieldErrors(err, nil)
	if got["numid"] != "required" {
		t.Errorf(`got["numid"] = %q; want "required"`, got["numid"])
	}
	if got["correo"] != "email" {
		t.Errorf(`got["correo"] = %q; want "email"`, got["correo"])
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	if got := FieldErrors(errors.New("plain"), &bindInput{}); got != nil {
		t.Errorf("FieldErrors() = %v; want nil", got)
	}
}

func TestFieldJSONNames_Cached(t *testing.T) {
	first := fieldJSONNames(&bindInput{})
	second := fieldJSONNames(bindInput{})

	want := map[string]string{"NumID": "numId", "Correo": "correo"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("fieldJSONNames() = %v; want %v", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pointer and value disagree: %v vs %v", first, second)
	}
	if got := fieldJSONNames(nil); got != nil {
		t.Errorf("fieldJSONNames(nil) = %v; want nil", got)
	}
	if got := fieldJSONNames("not a struct"); got != nil {
		t.Errorf("fieldJSONNames(string) = %v; want nil", got)
	}
}
