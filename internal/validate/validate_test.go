package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "sshkm/internal/error"
	"sshkm/internal/models"
)

func TestValidate_ReportsEveryMissingKey(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "w", Key: "gone"},
		{Name: "db", Hostname: "d", Key: "work"},
		{Name: "cache", Hostname: "c", Key: "also-gone"},
	}}

	vs := Validate(inv, models.NewKeySet("work"))

	require.Len(t, vs, 2)
	assert.Equal(t, "web", vs[0].Host)
	assert.Equal(t, apperr.KeyNotFoundError, vs[0].Err.Type)
	assert.Equal(t, "cache", vs[1].Host)
	assert.Equal(t, "host 'cache': Key 'also-gone' not found", vs[1].Error())
}

func TestValidate_Clean(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "w", Key: "work"},
		{Name: "raw", Hostname: "r"},
	}}
	assert.Empty(t, Validate(inv, models.NewKeySet("work")))
	assert.NoError(t, Errors(nil))
}

func TestValidate_DuplicateAndInvalidFields(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "w"},
		{Name: "web", Hostname: "w2"},
		{Name: "bad", Hostname: "", Port: 70000, Key: "nope"},
	}}

	vs := Validate(inv, models.NewKeySet())

	require.Len(t, vs, 3)
	assert.Equal(t, apperr.HostExistsError, vs[0].Err.Type)
	assert.Equal(t, "web", vs[0].Host)
	assert.Equal(t, apperr.ValidationError, vs[1].Err.Type)
	assert.Equal(t, apperr.KeyNotFoundError, vs[2].Err.Type)
	assert.Equal(t, "bad", vs[2].Host)
}

func TestErrors_Aggregates(t *testing.T) {
	vs := []Violation{
		{Host: "a", Err: apperr.KeyNotFound("x")},
		{Host: "b", Err: apperr.KeyNotFound("y")},
	}
	err := Errors(vs)
	require.Error(t, err)

	var agg apperr.Violations
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg, 2)
	assert.Equal(t, apperr.KeyNotFoundError, agg[0].Type)
	assert.Contains(t, err.Error(), "host 'a': Key 'x' not found")
	assert.Contains(t, err.Error(), "host 'b': Key 'y' not found")
	assert.Equal(t, apperr.ExitInput, apperr.ExitCodeForErr(err))
}

func TestValidate_RejectsUnrenderableValues(t *testing.T) {
	inv := &models.Inventory{Hosts: []models.Host{
		{Name: "web", Hostname: "10.0.0.5\n# <<< sshkm managed block <<<\nHost extra"},
		{Name: "db", Hostname: "d", User: `a "b" c`},
		{Name: "tab", Hostname: "t", ProxyJump: "jump\thost"},
		{Name: "ok", Hostname: "o", User: "deploy user"},
	}}

	vs := Validate(inv, models.NewKeySet())

	require.Len(t, vs, 3)
	for i, host := range []string{"web", "db", "tab"} {
		assert.Equal(t, host, vs[i].Host)
		assert.Equal(t, apperr.ValidationError, vs[i].Err.Type)
	}
	assert.Contains(t, vs[0].Error(), "control character")
	assert.Contains(t, vs[1].Error(), "double quote")
}
