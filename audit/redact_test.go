package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactTopLevel(t *testing.T) {
	in := map[string]any{"email": "x@y.com", "password": "secret"}
	out := Redact(in).(map[string]any)

	assert.Equal(t, "x@y.com", out["email"])
	assert.Equal(t, Sentinel, out["password"])
	// input untouched
	assert.Equal(t, "secret", in["password"])
}

func TestRedactNested(t *testing.T) {
	in := map[string]any{
		"user": map[string]any{
			"profile": map[string]any{
				"resetToken":       "tok",
				"resetTokenExpiry": "2026-01-01",
				"name":             "A",
			},
		},
	}
	out := Redact(in).(map[string]any)
	profile := out["user"].(map[string]any)["profile"].(map[string]any)

	assert.Equal(t, Sentinel, profile["resetToken"])
	assert.Equal(t, Sentinel, profile["resetTokenExpiry"])
	assert.Equal(t, "A", profile["name"])
}

func TestRedactThroughArrays(t *testing.T) {
	in := []any{
		map[string]any{"password": "one"},
		map[string]any{"items": []any{map[string]any{"reset_token": "two"}}},
		"plain",
	}
	out := Redact(in).([]any)

	assert.Equal(t, Sentinel, out[0].(map[string]any)["password"])
	inner := out[1].(map[string]any)["items"].([]any)[0].(map[string]any)
	assert.Equal(t, Sentinel, inner["reset_token"])
	assert.Equal(t, "plain", out[2])
}

func TestRedactSnakeCaseColumnNames(t *testing.T) {
	// Row maps read straight from the database use column spelling.
	in := map[string]any{"reset_token": "t", "reset_token_expiry": "e", "role": "admin"}
	out := Redact(in).(map[string]any)

	assert.Equal(t, Sentinel, out["reset_token"])
	assert.Equal(t, Sentinel, out["reset_token_expiry"])
	assert.Equal(t, "admin", out["role"])
}

func TestRedactScalarsPassThrough(t *testing.T) {
	assert.Equal(t, 42, Redact(42))
	assert.Equal(t, "s", Redact("s"))
	assert.Nil(t, Redact(nil))
}

func TestMarshalRedacted(t *testing.T) {
	type payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	got := marshalRedacted(payload{Email: "x@y.com", Password: "secret"})

	assert.JSONEq(t, `{"email":"x@y.com","password":"[REDACTED]"}`, string(got))
}

func TestMarshalRedactedUnserializable(t *testing.T) {
	assert.Nil(t, marshalRedacted(make(chan int)))
}
